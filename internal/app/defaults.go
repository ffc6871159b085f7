package app

import (
	"os"

	"github.com/layerport/layerport/internal/setting"
)

// Source names settings reference in their "sources" attribute.
const (
	// SourceSession holds values for the lifetime of the process.
	SourceSession = "session"

	// SourcePersistent holds values across runs, backed by a file.
	SourcePersistent = "persistent"
)

// DefaultSettings builds the application settings tree.
//
// The "special" group holds settings that drive a single invocation and
// must never be reset, loaded or saved wholesale. The "main" group holds
// the export settings proper and the "gui" group holds window state. Both
// default to session-then-persistent sources. Session-only settings narrow
// their own source list.
func DefaultSettings() (*setting.Group, error) {
	settings, err := setting.GroupFromDescription(setting.Description{
		"name": "all_settings",
		"groups": []any{
			setting.Description{
				"name": "special",
				"tags": []string{
					setting.TagIgnoreReset,
					setting.TagIgnoreLoad,
					setting.TagIgnoreSave,
				},
			},
			setting.Description{
				"name": "main",
				"setting_attributes": setting.Description{
					"sources": []string{SourceSession, SourcePersistent},
				},
			},
		},
	})
	if err != nil {
		return nil, err
	}

	special, err := settings.GroupAt("special")
	if err != nil {
		return nil, err
	}
	if err := special.Add(
		setting.Description{
			"type":         "choice",
			"name":         "run_mode",
			"default":      "non_interactive",
			"choices":      []string{"interactive", "non_interactive", "with_last_values"},
			"display_name": "The run mode",
		},
		setting.Description{
			"type":    "bool",
			"name":    "first_run",
			"default": true,
			"sources": []string{SourceSession},
		},
	); err != nil {
		return nil, err
	}

	main, err := settings.GroupAt("main")
	if err != nil {
		return nil, err
	}
	if err := main.Add(
		setting.Description{
			"type":         "file_extension",
			"name":         "file_extension",
			"default":      "png",
			"display_name": "File extension",
		},
		setting.Description{
			"type":         "dirpath",
			"name":         "output_directory",
			"default":      defaultOutputDirectory(),
			"display_name": "Output directory",
			"tags":         []string{setting.TagIgnoreReset},
		},
		setting.Description{
			"type":         "string",
			"name":         "layer_filename_pattern",
			"default":      "[layer name]",
			"display_name": "Layer filename pattern",
			"description":  "Layer filename pattern (empty string = layer name)",
			"allow_empty":  true,
		},
		setting.Description{
			"type":         "generic",
			"name":         "selected_layers",
			"default":      []any{},
			"display_name": "Selected layers",
			"sources":      []string{SourceSession},
		},
		setting.Description{
			"type":         "generic",
			"name":         "selected_layers_persistent",
			"default":      []any{},
			"display_name": "Selected layers",
			"sources":      []string{SourcePersistent},
		},
		setting.Description{
			"type":         "choice",
			"name":         "overwrite_mode",
			"default":      "rename_new",
			"choices":      []string{"replace", "skip", "rename_new", "rename_existing"},
			"display_name": "Overwrite mode (non-interactive run mode only)",
		},
	); err != nil {
		return nil, err
	}

	gui, err := guiSettings()
	if err != nil {
		return nil, err
	}
	if err := settings.Add(gui); err != nil {
		return nil, err
	}

	return settings, nil
}

// guiSettings builds window and preview state. The nested gui_session
// group narrows persistence to the session source.
func guiSettings() (*setting.Group, error) {
	gui, err := setting.NewGroup("gui", setting.WithSettingAttributes(setting.Description{
		"sources": []string{SourceSession, SourcePersistent},
	}))
	if err != nil {
		return nil, err
	}
	if err := gui.Add(
		setting.Description{
			"type":    "bool",
			"name":    "show_more_settings",
			"default": false,
		},
		setting.Description{
			"type":    "int",
			"name":    "paned_outside_previews_position",
			"default": 610,
		},
		setting.Description{
			"type":    "bool",
			"name":    "name_preview_sensitive",
			"default": true,
		},
		setting.Description{
			"type":    "bool",
			"name":    "image_preview_sensitive",
			"default": true,
		},
	); err != nil {
		return nil, err
	}

	guiSession, err := setting.NewGroup("gui_session", setting.WithSettingAttributes(setting.Description{
		"sources": []string{SourceSession},
	}))
	if err != nil {
		return nil, err
	}
	if err := guiSession.Add(
		setting.Description{
			"type":    "generic",
			"name":    "name_preview_collapsed_layers",
			"default": []any{},
		},
		setting.Description{
			"type":    "generic",
			"name":    "image_preview_displayed_layers",
			"default": []any{},
		},
	); err != nil {
		return nil, err
	}
	if err := gui.Add(guiSession); err != nil {
		return nil, err
	}

	return gui, nil
}

func defaultOutputDirectory() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return home
}

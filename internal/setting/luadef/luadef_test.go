package luadef

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/layerport/layerport/internal/setting"
)

const treeDefinition = `
return {
  name = "all_settings",
  groups = {
    {
      name = "main",
      setting_attributes = { sources = { "session", "persistent" } },
      settings = {
        { type = "file_extension", name = "file_extension", default = "png" },
        { type = "int", name = "quality", default = 90, min = 0, max = 100 },
        {
          type = "choice",
          name = "overwrite_mode",
          default = "rename_new",
          choices = { "replace", "skip", "rename_new", "rename_existing" },
        },
      },
    },
    {
      name = "special",
      tags = { "ignore_reset", "ignore_load", "ignore_save" },
    },
  },
}
`

func TestLoad_BuildsTree(t *testing.T) {
	desc, err := Load(treeDefinition)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	root, err := setting.GroupFromDescription(desc)
	if err != nil {
		t.Fatalf("GroupFromDescription failed: %v", err)
	}

	if got := root.Value("main/file_extension", nil); got != "png" {
		t.Errorf("file_extension = %v, want png", got)
	}
	// Lua numbers arrive as int64 when integral.
	if got := root.Value("main/quality", nil); got != int64(90) {
		t.Errorf("quality = %v (%T), want int64(90)", got, got)
	}

	quality, err := root.SettingAt("main/quality")
	if err != nil {
		t.Fatalf("SettingAt failed: %v", err)
	}
	if err := quality.SetValue(150); err == nil {
		t.Error("min/max from the definition must be enforced")
	}
	if got := quality.Sources(); len(got) != 2 || got[0] != "session" || got[1] != "persistent" {
		t.Errorf("sources = %v, want inherited [session persistent]", got)
	}

	special, err := root.GroupAt("special")
	if err != nil {
		t.Fatalf("GroupAt failed: %v", err)
	}
	if !special.HasTag(setting.TagIgnoreReset) {
		t.Error("group tags from the definition were lost")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.lua")
	if err := os.WriteFile(path, []byte(treeDefinition), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	desc, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if desc["name"] != "all_settings" {
		t.Errorf("name = %v, want all_settings", desc["name"])
	}
}

func TestLoad_FractionalNumbers(t *testing.T) {
	desc, err := Load(`return { name = "g", settings = { { type = "float", name = "ratio", default = 1.5 } } }`)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	root, err := setting.GroupFromDescription(desc)
	if err != nil {
		t.Fatalf("GroupFromDescription failed: %v", err)
	}
	if got := root.Value("ratio", nil); got != 1.5 {
		t.Errorf("ratio = %v (%T), want 1.5", got, got)
	}
}

func TestLoad_ComputedDefinition(t *testing.T) {
	// Definitions may use the opened libraries to build the table.
	desc, err := Load(`
local g = { name = string.lower("MAIN"), settings = {} }
for i = 1, 2 do
  g.settings[i] = { type = "int", name = "slot_" .. i, default = i * 10 }
end
return g
`)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	root, err := setting.GroupFromDescription(desc)
	if err != nil {
		t.Fatalf("GroupFromDescription failed: %v", err)
	}
	if got := root.Value("slot_2", nil); got != int64(20) {
		t.Errorf("slot_2 = %v, want 20", got)
	}
}

func TestLoad_NotATable(t *testing.T) {
	if _, err := Load(`return 42`); !errors.Is(err, ErrNoDefinition) {
		t.Errorf("Load(return 42) error = %v, want ErrNoDefinition", err)
	}
	if _, err := Load(`return`); !errors.Is(err, ErrNoDefinition) {
		t.Errorf("Load(return) error = %v, want ErrNoDefinition", err)
	}
}

func TestLoad_SyntaxError(t *testing.T) {
	if _, err := Load(`return {`); err == nil {
		t.Error("expected error for invalid Lua")
	}
}

func TestLoad_SandboxedLibraries(t *testing.T) {
	// io and os are not opened; touching them must fail.
	if _, err := Load(`return { name = io.read() }`); err == nil {
		t.Error("io must not be available to definitions")
	}
	if _, err := Load(`return { name = os.getenv("HOME") }`); err == nil {
		t.Error("os must not be available to definitions")
	}
}

package setting

import "errors"

// Reset restores every setting in the subtree to its default value,
// skipping nodes tagged ignore_reset.
func (g *Group) Reset() {
	w := g.Walk(WalkOptions{Include: ExcludeTag(TagIgnoreReset)})
	w.Each(func(n Node) {
		if s, ok := n.(*Setting); ok {
			s.Reset()
		}
	})
}

// PresenterFunc produces the presenter to bind for a setting. Returning nil
// binds the null presenter.
type PresenterFunc func(s *Setting) Presenter

// BindPresenters attaches presenters to every setting in the subtree,
// skipping nodes tagged ignore_initialize_gui. A nil bind rebinds null
// presenters everywhere.
func (g *Group) BindPresenters(bind PresenterFunc) {
	w := g.Walk(WalkOptions{Include: ExcludeTag(TagIgnoreInitGUI)})
	w.Each(func(n Node) {
		s, ok := n.(*Setting)
		if !ok {
			return
		}
		var p Presenter
		if bind != nil {
			p = bind(s)
		}
		s.BindPresenter(p)
	})
}

// ApplyPresenterValues pulls the value entered in each setting's presenter
// and assigns it, skipping nodes tagged ignore_apply_gui_value_to_setting.
//
// The walk never stops at the first invalid value: all failures are
// collected and returned as one *ValueErrors carrying a message per invalid
// setting and references to each, so a caller can highlight every invalid
// field at once.
func (g *Group) ApplyPresenterValues() error {
	var failures []*ValueError

	w := g.Walk(WalkOptions{Include: ExcludeTag(TagIgnoreApplyGUI)})
	w.Each(func(n Node) {
		s, ok := n.(*Setting)
		if !ok {
			return
		}
		if err := s.ApplyPresenterValue(); err != nil {
			var ve *ValueError
			if errors.As(err, &ve) {
				failures = append(failures, ve)
			} else {
				failures = append(failures, &ValueError{Setting: s, Message: err.Error()})
			}
		}
	})

	if len(failures) > 0 {
		return &ValueErrors{Errors: failures}
	}
	return nil
}

package setting

// Presenter mirrors a setting's value into a GUI control. The core never
// touches widgets itself; it calls these two methods for non-ignored
// settings during the GUI-tagged bulk operations.
type Presenter interface {
	// SetValue pushes a value to the widget.
	SetValue(v any)

	// Value pulls the current value entered in the widget.
	Value() any
}

// NullPresenter records values without any widget behind it. Settings are
// bound to a NullPresenter until a real one is attached, so values are never
// lost when no GUI exists.
type NullPresenter struct {
	value any
}

// SetValue implements Presenter.
func (p *NullPresenter) SetValue(v any) {
	p.value = v
}

// Value implements Presenter.
func (p *NullPresenter) Value() any {
	return p.value
}

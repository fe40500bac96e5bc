package cart

import "finitefield.org/storefront-web/internal/schedule"

// PanelOpen reports whether the sidebar is showing.
func (m *Manager) PanelOpen() bool { return m.panelOpen }

// AutoClosePending reports whether an auto-close is scheduled.
func (m *Manager) AutoClosePending() bool { return m.autoClose != nil }

// OpenPanel shows the sidebar. A user action cancels any pending auto-close.
func (m *Manager) OpenPanel() {
	m.cancelAutoClose()
	m.panelOpen = true
	m.rerender()
}

// ClosePanel hides the sidebar and cancels any pending auto-close.
func (m *Manager) ClosePanel() {
	m.cancelAutoClose()
	m.panelOpen = false
	m.rerender()
}

// TogglePanel flips the sidebar and cancels any pending auto-close.
func (m *Manager) TogglePanel() bool {
	m.cancelAutoClose()
	m.panelOpen = !m.panelOpen
	m.rerender()
	return m.panelOpen
}

// revealPanel opens the sidebar programmatically and replaces any pending
// auto-close with a fresh one.
func (m *Manager) revealPanel() {
	m.cancelAutoClose()
	m.panelOpen = true
	var task schedule.Task
	task = m.sched.AfterFunc(m.autoDelay, func() {
		if m.autoClose != task {
			return
		}
		m.autoClose = nil
		m.panelOpen = false
		m.rerender()
	})
	m.autoClose = task
}

func (m *Manager) cancelAutoClose() {
	if m.autoClose != nil {
		m.autoClose.Stop()
		m.autoClose = nil
	}
}

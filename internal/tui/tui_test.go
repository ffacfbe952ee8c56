package tui

import (
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/sadopc/zenfocus/internal/control"
	"github.com/sadopc/zenfocus/internal/engine"
	"github.com/sadopc/zenfocus/internal/i18n"
	"github.com/sadopc/zenfocus/internal/notify"
	"github.com/sadopc/zenfocus/internal/phase"
	"github.com/sadopc/zenfocus/internal/session"
	"github.com/sadopc/zenfocus/internal/sound"
	"github.com/sadopc/zenfocus/internal/store"
)

type testEnv struct {
	deps   Deps
	store  *store.Store
	engine *engine.Engine
	bridge *notify.Bridge
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	st, err := store.NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	eng, err := engine.New(engine.Config{
		Catalog:      phase.DefaultCatalog(),
		Durations:    engine.DefaultDurations(),
		TickInterval: time.Second,
		Scheduler:    engine.NewManualScheduler(),
	}, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(eng.Close)

	br := notify.New(notify.Options{Logger: zerolog.Nop()})

	var mgr *session.Manager
	surface := control.New(eng, sound.NopPlayer{}, br, control.Options{
		Logger: zerolog.Nop(),
		Hooks: control.Hooks{
			NewSession:    func() error { return mgr.NewSession() },
			ToggleCompact: func() error { return mgr.ToggleCompact() },
		},
	})
	mgr, err = session.NewManager(st, eng, br, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	return testEnv{
		deps: Deps{
			Store:      st,
			Surface:    surface,
			Session:    mgr,
			Translator: i18n.New("en"),
			Sounds:     sound.DefaultCatalog(),
			Player:     sound.NopPlayer{},
			ExportDir:  t.TempDir(),
		},
		store:  st,
		engine: eng,
		bridge: br,
	}
}

func newSizedApp(t *testing.T, env testEnv) App {
	t.Helper()
	m, _ := NewApp(env.deps).Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return m.(App)
}

func press(k string) tea.KeyMsg {
	switch k {
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

// send feeds msg to the app and runs the returned command once.
func send(t *testing.T, a App, msg tea.Msg) (App, tea.Msg) {
	t.Helper()
	m, cmd := a.Update(msg)
	if cmd == nil {
		return m.(App), nil
	}
	return m.(App), cmd()
}

// ============================================================
// Formatting helpers
// ============================================================

func TestFormatClock(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00"},
		{-time.Second, "00:00"},
		{1500 * time.Millisecond, "00:02"},
		{59 * time.Second, "00:59"},
		{25 * time.Minute, "25:00"},
		{90 * time.Minute, "90:00"},
	}
	for _, tt := range tests {
		if got := formatClock(tt.d); got != tt.want {
			t.Errorf("formatClock(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00:00"},
		{time.Second, "00:00:01"},
		{time.Hour + 30*time.Minute, "01:30:00"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestFormatHours(t *testing.T) {
	if got := formatHours(5400); got != "1.5h" {
		t.Fatalf("formatHours(5400) = %q", got)
	}
	if got := formatSeconds(61); got != "00:01:01" {
		t.Fatalf("formatSeconds(61) = %q", got)
	}
}

// ============================================================
// Timer model
// ============================================================

func TestTimerModelStates(t *testing.T) {
	var tm timerModel
	if tm.running() || tm.playing() || tm.paused() || tm.complete() {
		t.Fatal("empty timer should be idle")
	}

	tm.apply(engine.Snapshot{Active: true, IsPlaying: true, Remaining: time.Minute})
	if !tm.playing() || tm.paused() {
		t.Fatal("expected playing")
	}
	if tm.remaining() != time.Minute {
		t.Fatalf("remaining = %v", tm.remaining())
	}

	tm.apply(engine.Snapshot{Active: true})
	if !tm.paused() || tm.playing() {
		t.Fatal("expected paused")
	}

	tm.apply(engine.Snapshot{Active: true, Complete: true})
	if !tm.complete() || tm.running() {
		t.Fatal("expected complete")
	}
}

// ============================================================
// Pomodoro view
// ============================================================

func TestPomodoroStartFromWelcome(t *testing.T) {
	env := newTestEnv(t)
	app := newSizedApp(t, env)

	if !app.timer.onWelcome() {
		t.Fatal("welcome screen should show before the first session")
	}
	if !strings.Contains(app.View(), "Welcome to zenfocus") {
		t.Fatal("welcome greeting missing")
	}

	app, msg := send(t, app, press(" "))
	if sm, ok := msg.(statusMsg); ok && sm.isError {
		t.Fatalf("start failed: %s", sm.text)
	}

	snap := env.engine.Snapshot()
	if !snap.Active || !snap.IsPlaying {
		t.Fatalf("expected a playing session, got %+v", snap)
	}
	if env.deps.Session.Preferences().ShowWelcome {
		t.Fatal("welcome should be dismissed")
	}

	app, _ = send(t, app, snapshotMsg(snap))
	if app.timer.onWelcome() {
		t.Fatal("timer should replace the welcome screen")
	}
	if !strings.Contains(app.View(), "Round 1 of 4") {
		t.Fatal("round title missing")
	}
}

func TestPomodoroStartFromWelcomeWithPausedSession(t *testing.T) {
	env := newTestEnv(t)
	if err := env.deps.Session.NewSession(); err != nil {
		t.Fatal(err)
	}
	env.deps.Initial = env.engine.Snapshot()
	app := newSizedApp(t, env)

	if !app.timer.onWelcome() {
		t.Fatal("welcome screen should show over the paused session")
	}
	sessionID := env.deps.Session.SessionID()

	_, msg := send(t, app, press(" "))
	if sm, ok := msg.(statusMsg); ok && sm.isError {
		t.Fatalf("start failed: %s", sm.text)
	}

	snap := env.engine.Snapshot()
	if !snap.IsPlaying {
		t.Fatalf("expected the paused session to start playing, got %+v", snap)
	}
	if env.deps.Session.Preferences().ShowWelcome {
		t.Fatal("welcome should be dismissed")
	}
	if got := env.deps.Session.SessionID(); got != sessionID {
		t.Fatalf("space must reuse the open session, got %d want %d", got, sessionID)
	}
}

func TestPomodoroSkipAndNewSession(t *testing.T) {
	env := newTestEnv(t)
	if err := env.deps.Session.NewSession(); err != nil {
		t.Fatal(err)
	}
	if err := env.deps.Session.DismissWelcome(); err != nil {
		t.Fatal(err)
	}
	env.deps.Initial = env.engine.Snapshot()
	app := newSizedApp(t, env)

	send(t, app, press("n"))
	if got := env.engine.Snapshot().PhaseIndex; got != 1 {
		t.Fatalf("expected phase index 1 after skip, got %d", got)
	}

	send(t, app, press("N"))
	snap := env.engine.Snapshot()
	if snap.PhaseIndex != 0 || snap.Round != 1 {
		t.Fatalf("expected a fresh session, got %+v", snap)
	}
}

func TestPomodoroSkipWhenComplete(t *testing.T) {
	env := newTestEnv(t)
	env.deps.Initial = engine.Snapshot{Active: true, Complete: true, Round: 4, TotalRounds: 4}
	app := newSizedApp(t, env)
	app.timer.showWelcome = false

	_, msg := send(t, app, press("n"))
	sm, ok := msg.(statusMsg)
	if !ok || !strings.Contains(sm.text, "Session complete") {
		t.Fatalf("expected session complete status, got %#v", msg)
	}
}

func TestPomodoroRunMapsErrors(t *testing.T) {
	env := newTestEnv(t)
	p := newPomodoroModel(env.deps)

	msg := p.run(func() error { return engine.ErrTerminalState })()
	if sm := msg.(statusMsg); sm.isError || sm.text != "Session complete" {
		t.Fatalf("unexpected status %+v", sm)
	}
	msg = p.run(func() error { return engine.ErrNoSession })()
	if sm := msg.(statusMsg); sm.isError {
		t.Fatalf("no session should not be an error: %+v", sm)
	}
	msg = p.run(func() error { return errors.New("boom") })()
	if sm := msg.(statusMsg); !sm.isError {
		t.Fatal("expected error status")
	}
	if msg := p.run(func() error { return nil })(); msg != nil {
		t.Fatalf("expected nil msg, got %#v", msg)
	}
}

func TestCompactView(t *testing.T) {
	env := newTestEnv(t)
	app := newSizedApp(t, env)

	if !strings.Contains(app.timer.compactView(), "space: start") {
		t.Fatal("compact view should prompt to start")
	}

	prefs := env.deps.Session.Preferences()
	prefs.Compact = true
	app, _ = send(t, app, PreferencesMsg{Prefs: prefs})
	app, _ = send(t, app, snapshotMsg(engine.Snapshot{
		Active: true, IsPlaying: true, Phase: phase.Focus, Round: 2, TotalRounds: 4, Remaining: 90 * time.Second,
	}))

	out := app.View()
	if strings.Contains(out, "History") {
		t.Fatal("compact mode should hide the tabs")
	}
	if !strings.Contains(out, "01:30") || !strings.Contains(out, "2/4") {
		t.Fatalf("compact line missing clock or round: %q", out)
	}
}

// ============================================================
// Confirmation and alerts
// ============================================================

func TestConfirmPromptCancel(t *testing.T) {
	env := newTestEnv(t)
	if err := env.deps.Session.NewSession(); err != nil {
		t.Fatal(err)
	}
	app := newSizedApp(t, env)

	req, err := env.deps.Surface.RequestReset()
	if err != nil {
		t.Fatal(err)
	}
	app, _ = send(t, app, promptMsg(req))
	if app.confirm == nil {
		t.Fatal("confirmation should be open")
	}
	if !strings.Contains(app.View(), "redo the current phase") {
		t.Fatal("confirmation message missing")
	}

	app, msg := send(t, app, press("esc"))
	if app.confirm != nil {
		t.Fatal("esc should close the confirmation")
	}
	if rm, ok := msg.(resolvedMsg); !ok || rm.confirmed {
		t.Fatalf("expected a cancelled resolution, got %#v", msg)
	}
	if len(env.deps.Surface.Pending()) != 0 {
		t.Fatal("request should be resolved")
	}
}

func TestConfirmPromptQueue(t *testing.T) {
	env := newTestEnv(t)
	if err := env.deps.Session.NewSession(); err != nil {
		t.Fatal(err)
	}
	app := newSizedApp(t, env)

	redo, _ := env.deps.Surface.RequestReset()
	round, _ := env.deps.Surface.RequestResetRound()

	app, _ = send(t, app, promptMsg(redo))
	app, _ = send(t, app, promptMsg(redo))
	app, _ = send(t, app, promptMsg(round))
	if len(app.queued) != 1 {
		t.Fatalf("expected one queued request, got %d", len(app.queued))
	}

	m, _ := app.Update(press("esc"))
	app = m.(App)
	if app.confirm == nil || app.confirm.req.Kind != control.ConfirmResetRound {
		t.Fatal("queued request should open next")
	}
}

func TestConfirmResolveConfirmed(t *testing.T) {
	env := newTestEnv(t)
	if err := env.deps.Session.NewSession(); err != nil {
		t.Fatal(err)
	}
	surface := env.deps.Surface
	if err := surface.RequestSkip(); err != nil {
		t.Fatal(err)
	}

	req, _ := surface.RequestResetRound()
	c := newConfirmModel(surface, env.deps.Translator, req)
	if msg := c.resolve(true)(); msg != (resolvedMsg{confirmed: true}) {
		t.Fatalf("unexpected msg %#v", msg)
	}
	if got := env.engine.Snapshot().PhaseIndex; got != 0 {
		t.Fatalf("reset round should return to the first phase, got %d", got)
	}

	msg := c.resolve(true)()
	if sm, ok := msg.(statusMsg); !ok || sm.isError {
		t.Fatalf("second answer should report already answered, got %#v", msg)
	}
}

func TestAlertOverlay(t *testing.T) {
	env := newTestEnv(t)
	app := newSizedApp(t, env)

	app, _ = send(t, app, alertMsg(notify.Signal{Type: notify.SignalAlert, Message: "Time for Short Break"}))
	if !strings.Contains(app.View(), "Time for Short Break") {
		t.Fatal("alert message missing")
	}

	app, _ = send(t, app, press("x"))
	if app.alert != nil {
		t.Fatal("any key should dismiss the alert")
	}
}

// ============================================================
// History, sounds, settings
// ============================================================

func TestHistoryModeAndOffset(t *testing.T) {
	env := newTestEnv(t)
	h := newHistoryModel(env.store, env.deps.Translator)
	h.setSize(100, 30)

	from, to := h.dateRange()
	if to.Sub(from) != 7*24*time.Hour {
		t.Fatalf("daily range should span 7 days, got %v", to.Sub(from))
	}

	h, _ = h.update(press("left"))
	if h.offset != 1 {
		t.Fatalf("expected offset 1, got %d", h.offset)
	}
	h, _ = h.update(press("enter"))
	if h.mode != reportWeekly || h.offset != 0 {
		t.Fatal("enter should switch to weekly and reset the offset")
	}
	from, _ = h.dateRange()
	if from.Weekday() != time.Monday {
		t.Fatalf("weekly range should start on Monday, got %v", from.Weekday())
	}
}

func TestHistoryView(t *testing.T) {
	env := newTestEnv(t)
	h := newHistoryModel(env.store, env.deps.Translator)
	h.setSize(100, 30)

	if !strings.Contains(h.view(), "No data for this period") {
		t.Fatal("empty history should say so")
	}

	today := time.Now().UTC().Format("2006-01-02")
	h, _ = h.update(historyDataMsg{days: []store.DailyFocus{
		{Date: today, FocusSeconds: 3000, BreakSeconds: 600, FocusCompleted: 2},
	}})
	out := h.view()
	if !strings.Contains(out, today) || !strings.Contains(out, "00:50:00") {
		t.Fatalf("summary row missing:\n%s", out)
	}
}

func TestSoundsSelectAndMute(t *testing.T) {
	env := newTestEnv(t)
	s := newSoundsModel(env.deps.Session, sound.DefaultCatalog(), sound.NopPlayer{})

	if len(s.entries) != 3 {
		t.Fatalf("expected 3 tick sounds, got %d", len(s.entries))
	}
	if s.entries[s.cursor].ID != sound.ClassicTick {
		t.Fatal("cursor should start on the selected sound")
	}

	s, _ = s.update(press("j"))
	s, cmd := s.update(press("enter"))
	if msg := cmd(); msg.(statusMsg).isError {
		t.Fatalf("select failed: %+v", msg)
	}
	if got := env.deps.Session.Preferences().SoundID; got != sound.WaterDrop {
		t.Fatalf("expected %s, got %s", sound.WaterDrop, got)
	}

	s, cmd = s.update(press("m"))
	cmd()
	if env.deps.Session.Preferences().SoundEnabled || s.enabled {
		t.Fatal("m should turn sound off")
	}
	if !strings.Contains(s.view(), "Water Drop") {
		t.Fatal("view should list sounds")
	}
}

func TestSettingsHelpers(t *testing.T) {
	if got := formatSettingValue(store.KeyFocusDuration, "1500"); got != "25 min" {
		t.Errorf("focus duration = %q", got)
	}
	if got := formatSettingValue(store.KeyPhases, "focus,short_break"); got != "Focus → Short Break" {
		t.Errorf("phases = %q", got)
	}
	if got := formatSettingValue(store.KeyTheme, "dark"); got != "dark" {
		t.Errorf("theme = %q", got)
	}

	if validatePositive("3") != nil || validatePositive("0") == nil || validatePositive("x") == nil {
		t.Error("validatePositive accepts only positive integers")
	}

	if got := durationToMin(25 * time.Minute); got != "25" {
		t.Errorf("durationToMin = %q", got)
	}
	d, err := minToDuration("5")
	if err != nil || d != 5*time.Minute {
		t.Errorf("minToDuration = %v, %v", d, err)
	}
	if _, err := minToDuration("five"); err == nil {
		t.Error("expected error for non-numeric minutes")
	}
}

func TestSettingsPreferencesFromForm(t *testing.T) {
	env := newTestEnv(t)
	s := newSettingsModel(env.store, env.deps.Session)
	s, _ = s.showForm()

	*s.totalRounds = "2"
	*s.phases = "focus,short_break,long_break"
	*s.focus = "50"

	p, err := s.preferences()
	if err != nil {
		t.Fatal(err)
	}
	if p.TotalRounds != 2 || len(p.Phases) != 3 || p.FocusDuration != 50*time.Minute {
		t.Fatalf("unexpected preferences %+v", p)
	}

	if msg := s.saveSettings()(); msg.(statusMsg).isError {
		t.Fatalf("save failed: %+v", msg)
	}
	if env.deps.Session.Preferences().TotalRounds != 2 {
		t.Fatal("preferences not applied")
	}
}

// ============================================================
// App model
// ============================================================

func TestNewApp(t *testing.T) {
	app := NewApp(newTestEnv(t).deps)

	if app.activeView != viewTimer {
		t.Fatal("default view should be timer")
	}
	if app.showHelp || app.exportPicking || app.confirm != nil {
		t.Fatal("no overlay should be open by default")
	}
	if app.isFormActive() {
		t.Fatal("no forms should be active initially")
	}
}

func TestAppViewStates(t *testing.T) {
	app := newSizedApp(t, newTestEnv(t))

	for v := range viewNames {
		app.activeView = viewState(v)
		if output := app.View(); output == "" {
			t.Fatalf("view %d rendered empty", v)
		}
	}
}

func TestAppTabSwitching(t *testing.T) {
	app := newSizedApp(t, newTestEnv(t))

	app, _ = send(t, app, press("2"))
	if app.activeView != viewHistory {
		t.Fatal("2 should open history")
	}
	app, _ = send(t, app, press("tab"))
	if app.activeView != viewSounds {
		t.Fatalf("tab should cycle to sounds, got %d", app.activeView)
	}
}

func TestAppRenderHeaderContainsAllTabs(t *testing.T) {
	app := newSizedApp(t, newTestEnv(t))

	header := app.renderHeader()
	for _, name := range append(viewNames, "zenfocus") {
		if !strings.Contains(header, name) {
			t.Fatalf("header missing %q", name)
		}
	}
}

func TestAppFooterTimerIndicator(t *testing.T) {
	app := newSizedApp(t, newTestEnv(t))

	app, _ = send(t, app, snapshotMsg(engine.Snapshot{
		Active: true, IsPlaying: true, Phase: phase.ShortBreak, Remaining: 4 * time.Minute,
	}))
	footer := app.renderFooter()
	if !strings.Contains(footer, "Short Break") || !strings.Contains(footer, "04:00") {
		t.Fatalf("footer missing timer indicator: %q", footer)
	}
}

func TestAppLoadingState(t *testing.T) {
	app := NewApp(newTestEnv(t).deps)
	// Width 0 means not yet sized
	if output := app.View(); output != "Loading..." {
		t.Fatalf("expected 'Loading...', got %q", output)
	}
}

func TestAppStatusMessage(t *testing.T) {
	app := newSizedApp(t, newTestEnv(t))
	app, _ = send(t, app, statusMsg{text: "test status"})

	if !strings.Contains(app.renderFooter(), "test status") {
		t.Fatal("footer should contain status message")
	}
}

func TestAppExport(t *testing.T) {
	env := newTestEnv(t)
	app := newSizedApp(t, env)

	app, _ = send(t, app, press("e"))
	if !app.exportPicking {
		t.Fatal("e should open the export picker")
	}
	app, _ = send(t, app, press("j"))
	app, msg := send(t, app, press("enter"))

	done, ok := msg.(exportDoneMsg)
	if !ok {
		t.Fatalf("expected exportDoneMsg, got %#v", msg)
	}
	if !strings.HasSuffix(done.path, ".json") {
		t.Fatalf("expected json export, got %s", done.path)
	}
	if _, err := os.Stat(done.path); err != nil {
		t.Fatalf("export file missing: %v", err)
	}

	app, _ = send(t, app, done)
	if !strings.Contains(app.status, "Exported to") {
		t.Fatalf("unexpected status %q", app.status)
	}
}

// ============================================================
// Key bindings
// ============================================================

func TestKeyMapShortHelp(t *testing.T) {
	bindings := keys.ShortHelp()
	if len(bindings) == 0 {
		t.Fatal("short help should have bindings")
	}
}

func TestKeyMapFullHelp(t *testing.T) {
	groups := keys.FullHelp()
	if len(groups) == 0 {
		t.Fatal("full help should have groups")
	}
	for i, g := range groups {
		if len(g) == 0 {
			t.Fatalf("full help group %d is empty", i)
		}
	}
}

// ============================================================
// Styles (smoke test: they render without panicking)
// ============================================================

func TestApplyTheme(t *testing.T) {
	t.Cleanup(func() { applyTheme("dark") })

	applyTheme("light")
	if currentTheme != "light" || colorPrimary != palettes["light"].primary {
		t.Fatalf("light theme not applied: %q %v", currentTheme, colorPrimary)
	}
	applyTheme("solarized")
	if currentTheme != "dark" || colorPrimary != palettes["dark"].primary {
		t.Fatal("unknown theme should fall back to dark")
	}
}

func TestThemeFollowsPreferences(t *testing.T) {
	t.Cleanup(func() { applyTheme("dark") })
	env := newTestEnv(t)
	app := newSizedApp(t, env)

	prefs := env.deps.Session.Preferences()
	prefs.Theme = "light"
	send(t, app, PreferencesMsg{Prefs: prefs})
	if currentTheme != "light" {
		t.Fatalf("expected light theme, got %q", currentTheme)
	}
}

func TestStylesRender(t *testing.T) {
	styles := []struct {
		name string
		fn   func() string
	}{
		{"activeTab", func() string { return activeTabStyle.Render("test") }},
		{"inactiveTab", func() string { return inactiveTabStyle.Render("test") }},
		{"panel", func() string { return panelStyle.Render("test") }},
		{"activePanel", func() string { return activePanelStyle.Render("test") }},
		{"timerRunning", func() string { return timerRunningStyle.Render("test") }},
		{"timerPaused", func() string { return timerPausedStyle.Render("test") }},
		{"alert", func() string { return alertStyle.Render("test") }},
		{"errorAlert", func() string { return errorAlertStyle.Render("test") }},
		{"compact", func() string { return compactStyle.Render("test") }},
		{"focus", func() string { return phaseStyle(phase.Focus).Render("test") }},
		{"shortBreak", func() string { return phaseStyle(phase.ShortBreak).Render("test") }},
		{"longBreak", func() string { return phaseStyle(phase.LongBreak).Render("test") }},
	}

	for _, s := range styles {
		if result := s.fn(); result == "" {
			t.Fatalf("style %q rendered empty", s.name)
		}
	}
}

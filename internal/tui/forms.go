package tui

import (
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mxchestnut/workshelf/internal/onboarding"
	"github.com/mxchestnut/workshelf/pkg/models"
)

func (m Model) login(email, password string) tea.Cmd {
	client := m.client
	ctx := m.ctx
	return func() tea.Msg {
		sess, err := client.Login(ctx, email, password)
		if err != nil {
			return errorMsg{err}
		}
		return sessionMsg{sess}
	}
}

func (m Model) register(req models.RegisterRequest) tea.Cmd {
	client := m.client
	ctx := m.ctx
	return func() tea.Msg {
		sess, err := client.Register(ctx, req)
		if err != nil {
			return errorMsg{err}
		}
		return sessionMsg{sess}
	}
}

func (m Model) handleLoginKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "tab", "down":
		m.loginFocus = (m.loginFocus + 1) % len(m.loginInputs)
		return m.focusLogin()

	case "shift+tab", "up":
		m.loginFocus = (m.loginFocus + len(m.loginInputs) - 1) % len(m.loginInputs)
		return m.focusLogin()

	case "ctrl+n":
		m.view = ViewOnboarding
		m.form = onboarding.NewForm()
		m.formErrs = nil
		m.buildFormInputs()
		return m, nil

	case "enter":
		if m.loginFocus < len(m.loginInputs)-1 {
			m.loginFocus++
			return m.focusLogin()
		}
		email := strings.TrimSpace(m.loginInputs[0].Value())
		password := m.loginInputs[1].Value()
		if email == "" || password == "" {
			return m, nil
		}
		if m.loading {
			return m, nil
		}
		m.loading = true
		m.err = nil
		return m, m.login(email, password)
	}

	var cmd tea.Cmd
	m.loginInputs[m.loginFocus], cmd = m.loginInputs[m.loginFocus].Update(msg)
	return m, cmd
}

func (m Model) focusLogin() (tea.Model, tea.Cmd) {
	for i := range m.loginInputs {
		if i == m.loginFocus {
			m.loginInputs[i].Focus()
		} else {
			m.loginInputs[i].Blur()
		}
	}
	return m, textinput.Blink
}

// buildFormInputs rebuilds the text inputs for the current onboarding step,
// preserving values already entered on that step.
func (m *Model) buildFormInputs() {
	var inputs []textinput.Model
	switch m.form.Step() {
	case onboarding.StepAccount:
		email := textinput.New()
		email.Placeholder = "email"
		email.SetValue(m.form.Email)

		password := textinput.New()
		password.Placeholder = "password (8+ characters)"
		password.EchoMode = textinput.EchoPassword
		password.SetValue(m.form.Password)

		confirm := textinput.New()
		confirm.Placeholder = "confirm password"
		confirm.EchoMode = textinput.EchoPassword
		confirm.SetValue(m.form.ConfirmPassword)

		inputs = []textinput.Model{email, password, confirm}

	case onboarding.StepProfile:
		username := textinput.New()
		username.Placeholder = "username (lowercase, digits, _)"
		username.SetValue(m.form.Username)

		display := textinput.New()
		display.Placeholder = "display name"
		display.SetValue(m.form.DisplayName)

		inputs = []textinput.Model{username, display}

	case onboarding.StepInterests:
		interests := textinput.New()
		interests.Placeholder = "interests, comma separated"
		interests.SetValue(strings.Join(m.form.Interests, ", "))

		inputs = []textinput.Model{interests}
	}

	if len(inputs) > 0 {
		inputs[0].Focus()
	}
	m.formInputs = inputs
	m.formFocus = 0
}

// captureFormInputs copies input values back into the form for validation.
func (m *Model) captureFormInputs() {
	switch m.form.Step() {
	case onboarding.StepAccount:
		m.form.Email = m.formInputs[0].Value()
		m.form.Password = m.formInputs[1].Value()
		m.form.ConfirmPassword = m.formInputs[2].Value()

	case onboarding.StepProfile:
		m.form.Username = m.formInputs[0].Value()
		m.form.DisplayName = m.formInputs[1].Value()

	case onboarding.StepInterests:
		var interests []string
		for _, part := range strings.Split(m.formInputs[0].Value(), ",") {
			if part = strings.TrimSpace(part); part != "" {
				interests = append(interests, part)
			}
		}
		m.form.Interests = interests
	}
}

func (m Model) handleOnboardingKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "esc":
		if m.form.Step() == onboarding.StepAccount {
			m.view = ViewLogin
			return m, nil
		}
		m.captureFormInputs()
		m.form.Back()
		m.formErrs = nil
		m.buildFormInputs()
		return m, nil

	case "tab", "down":
		if len(m.formInputs) > 0 {
			m.formFocus = (m.formFocus + 1) % len(m.formInputs)
			return m.focusForm()
		}

	case "shift+tab", "up":
		if len(m.formInputs) > 0 {
			m.formFocus = (m.formFocus + len(m.formInputs) - 1) % len(m.formInputs)
			return m.focusForm()
		}

	case "enter":
		if m.formFocus < len(m.formInputs)-1 {
			m.formFocus++
			return m.focusForm()
		}
		m.captureFormInputs()
		if errs := m.form.Next(); errs != nil {
			m.formErrs = errs
			return m, nil
		}
		m.formErrs = nil
		if m.form.Done() {
			if m.loading {
				return m, nil
			}
			m.loading = true
			return m, m.register(m.form.Request())
		}
		m.buildFormInputs()
		return m, nil
	}

	var cmd tea.Cmd
	if len(m.formInputs) > 0 {
		m.formInputs[m.formFocus], cmd = m.formInputs[m.formFocus].Update(msg)
	}
	return m, cmd
}

func (m Model) focusForm() (tea.Model, tea.Cmd) {
	for i := range m.formInputs {
		if i == m.formFocus {
			m.formInputs[i].Focus()
		} else {
			m.formInputs[i].Blur()
		}
	}
	return m, textinput.Blink
}

func (m Model) renderLogin() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("Workshelf"))
	s.WriteString("\n")
	for i := range m.loginInputs {
		s.WriteString(m.loginInputs[i].View())
		s.WriteString("\n")
	}
	s.WriteString("\n")
	s.WriteString(m.statusBar())
	s.WriteString("\n")
	s.WriteString(helpStyle.Render("enter: log in • ctrl+n: create account • ctrl+c: quit"))
	return s.String()
}

func (m Model) renderOnboarding() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("Create your account"))
	s.WriteString("\n")
	s.WriteString(helpStyle.Render("Step: " + m.form.Step().String()))
	s.WriteString("\n\n")

	for i := range m.formInputs {
		s.WriteString(m.formInputs[i].View())
		s.WriteString("\n")
	}

	if len(m.formErrs) > 0 {
		s.WriteString("\n")
		fields := make([]string, 0, len(m.formErrs))
		for field := range m.formErrs {
			fields = append(fields, field)
		}
		sort.Strings(fields)
		for _, field := range fields {
			s.WriteString(fieldErrStyle.Render(field + ": " + m.formErrs[field]))
			s.WriteString("\n")
		}
	}

	s.WriteString("\n")
	s.WriteString(m.statusBar())
	s.WriteString("\n")
	s.WriteString(helpStyle.Render("enter: continue • esc: back • ctrl+c: quit"))
	return s.String()
}

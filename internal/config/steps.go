package config

// StepAction is the kind of a login step.
type StepAction string

const (
	StepWait  StepAction = "wait"
	StepInput StepAction = "input"
	StepClick StepAction = "click"
)

// WaitCondition names the element state a wait step blocks on.
type WaitCondition string

const (
	WaitVisible  WaitCondition = "visible"
	WaitHidden   WaitCondition = "hidden"
	WaitAttached WaitCondition = "attached"
	WaitDetached WaitCondition = "detached"
)

// LoginStep is one declarative instruction of the login sequence.
type LoginStep struct {
	Name               string
	Action             StepAction
	Locator            string        // input/click target
	Selector           string        // wait target
	WaitCondition      WaitCondition // defaults to visible
	ValueKey           string        // "email", "password", or a literal
	ExpectsNavigation  bool
	Optional           bool
	Sensitive          bool
}

// LoginSteps returns the ordered login sequence for the Smartsheet form
// behind the company Azure AD SSO chain.
func LoginSteps() []LoginStep {
	return []LoginStep{
		{
			Name:     "Wait for Login Form",
			Action:   StepWait,
			Selector: "#loginEmail",
			Optional: true,
		},
		{
			Name:      "Email Input",
			Action:    StepInput,
			Locator:   "#loginEmail",
			ValueKey:  "email",
			Sensitive: true,
		},
		{
			Name:              "Continue",
			Action:            StepClick,
			Locator:           "#formControl",
			ExpectsNavigation: true,
			Optional:          true,
		},
		{
			Name:     "Wait for SSO Choice",
			Action:   StepWait,
			Selector: "a.clsJspButtonWide",
			Optional: true,
		},
		{
			Name:              "Login with company account",
			Action:            StepClick,
			Locator:           "a.clsJspButtonWide",
			ExpectsNavigation: true,
			Optional:          true,
		},
		{
			Name:     "Wait for AAD Email",
			Action:   StepWait,
			Selector: "#i0116",
		},
		{
			Name:      "AAD Email",
			Action:    StepInput,
			Locator:   "#i0116",
			ValueKey:  "email",
			Sensitive: true,
		},
		{
			Name:              "AAD Next",
			Action:            StepClick,
			Locator:           "#idSIButton9",
			ExpectsNavigation: true,
			Optional:          true,
		},
		{
			Name:     "Wait for Password",
			Action:   StepWait,
			Selector: "#passwordInput",
		},
		{
			Name:      "Password Input",
			Action:    StepInput,
			Locator:   "#passwordInput",
			ValueKey:  "password",
			Sensitive: true,
		},
		{
			Name:              "Password Submit",
			Action:            StepClick,
			Locator:           "#submitButton",
			ExpectsNavigation: true,
			Optional:          true,
		},
		{
			Name:     "Stay Signed In Prompt",
			Action:   StepWait,
			Selector: "#idBtn_Back",
			Optional: true,
		},
		{
			Name:              "Stay Signed In - No",
			Action:            StepClick,
			Locator:           "#idBtn_Back",
			ExpectsNavigation: true,
			Optional:          true,
		},
		{
			Name:     "Wait for Form Page Ready",
			Action:   StepWait,
			Selector: "input[aria-label='Project']",
		},
	}
}

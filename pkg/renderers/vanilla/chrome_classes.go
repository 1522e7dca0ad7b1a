package vanilla

// ChromeClass is a typed identifier for semantic chrome CSS classes.
type ChromeClass string

const (
	ClassPage    ChromeClass = "predictform-page"
	ClassForm    ChromeClass = "predictform-form"
	ClassHeader  ChromeClass = "predictform-header"
	ClassFields  ChromeClass = "predictform-fields"
	ClassActions ChromeClass = "predictform-actions"
	ClassErrors  ChromeClass = "predictform-errors"
	ClassResult  ChromeClass = "predictform-result"
)

func chromeClasses() map[string]string {
	return map[string]string{
		"page":    string(ClassPage),
		"form":    string(ClassForm),
		"header":  string(ClassHeader),
		"fields":  string(ClassFields),
		"actions": string(ClassActions),
		"errors":  string(ClassErrors),
		"result":  string(ClassResult),
	}
}

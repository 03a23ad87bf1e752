package catalog

// App is a single web application entry from apps.json.
type App struct {
	AppName     string `json:"app_name"`
	Name        string `json:"name"`
	URL         string `json:"url"`
	Icon        string `json:"icon"`
	Category    string `json:"category"`
	Description string `json:"description,omitempty"`
	Skip        bool   `json:"skip,omitempty"`
}

// Comment is the desktop entry comment, falling back to a generic launch line.
func (a App) Comment() string {
	if a.Description != "" {
		return a.Description
	}
	return "Launch " + a.Name
}

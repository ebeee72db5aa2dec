package entities

import "fmt"

// Endpoint is one reachable backend the client can talk to.
type Endpoint struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

func (e Endpoint) FilterValue() string {
	return e.Name
}

func (e Endpoint) Title() string {
	return e.Name
}

func (e Endpoint) Description() string {
	return e.URL
}

func NewEndpoint(name, url string) Endpoint {
	if name == "" {
		name = fmt.Sprintf("endpoint (%s)", url)
	}
	return Endpoint{Name: name, URL: url}
}

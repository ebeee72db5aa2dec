package entities

// Settings is the durable slice of client state. Everything else resets
// on restart; only the selected endpoint survives.
type Settings struct {
	SelectedEndpoint string `json:"selected_endpoint"`
}

package types

// BilingualStrings carries parallel pt/en string lists, used for course
// requirements, objectives and target audience.
type BilingualStrings struct {
	PT []string `json:"pt"`
	EN []string `json:"en"`
}

// Location is the user's self-reported city and province.
type Location struct {
	City     string `json:"city"`
	Province string `json:"province"`
}

// SocialLinks holds optional profile links.
type SocialLinks struct {
	LinkedIn string `json:"linkedin"`
	GitHub   string `json:"github"`
	Website  string `json:"website"`
}

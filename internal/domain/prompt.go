package domain

// PromptSelection is a named instruction template sent ahead of the transcript.
type PromptSelection struct {
	Name      string `yaml:"name" json:"name"`
	Content   string `yaml:"content" json:"content"`
	IsDefault bool   `yaml:"default" json:"default"`
}

package script

import (
	_ "embed"
	"fmt"
	"os"
)

//go:embed templates/prologue.lua
var defaultPrologue string

//go:embed templates/epilogue.lua
var defaultEpilogue string

// DefaultTemplate returns the built-in fuse boilerplate.
func DefaultTemplate() Template {
	return Template{Prologue: defaultPrologue, Epilogue: defaultEpilogue}
}

// LoadTemplate reads prologue and epilogue files. An empty path keeps the
// corresponding built-in part.
func LoadTemplate(prologuePath, epiloguePath string) (Template, error) {
	tmpl := DefaultTemplate()

	if prologuePath != "" {
		data, err := os.ReadFile(prologuePath)
		if err != nil {
			return Template{}, fmt.Errorf("read prologue: %w", err)
		}
		tmpl.Prologue = string(data)
	}

	if epiloguePath != "" {
		data, err := os.ReadFile(epiloguePath)
		if err != nil {
			return Template{}, fmt.Errorf("read epilogue: %w", err)
		}
		tmpl.Epilogue = string(data)
	}

	return tmpl, nil
}

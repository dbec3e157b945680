package internal

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"text/template"
)

const promptFilename = "prompt.txt"

// promptFields is the data a summary template can reference.
type promptFields struct {
	Title       string
	Channel     string
	UploadDate  string
	Description string
	Transcript  string
}

func newPromptFields(transcript string, record *VideoRecord) promptFields {
	fields := promptFields{Transcript: transcript}
	if record == nil {
		return fields
	}
	fields.Title = record.Title
	fields.Channel = record.ChannelID
	fields.UploadDate = record.UploadDate
	fields.Description = record.Description
	return fields
}

// PromptManager resolves the summary template. The --prompt setting is
// either inline template text or a path to a template file; without it the
// config dir's prompt.txt is used, then the embedded copy.
type PromptManager struct {
	configDir string
	inline    string
	file      string
}

func NewPromptManager(configDir, setting string) *PromptManager {
	pm := &PromptManager{configDir: configDir}
	switch {
	case setting == "":
	case IsLikelyFilePath(setting) && FileExists(setting):
		pm.file = setting
	default:
		pm.inline = setting
	}
	return pm
}

func (pm *PromptManager) templateText() (string, error) {
	if pm.inline != "" {
		return pm.inline, nil
	}

	if pm.file != "" {
		data, err := os.ReadFile(pm.file)
		if err != nil {
			return "", fmt.Errorf("reading prompt template: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(filepath.Join(pm.configDir, promptFilename))
	if errors.Is(err, fs.ErrNotExist) {
		data, err = defaultFS.ReadFile(promptFilename)
	}
	if err != nil {
		return "", fmt.Errorf("reading prompt template: %w", err)
	}
	return string(data), nil
}

// CreatePrompt renders the template for a transcript. record may be nil, in
// which case only {{.Transcript}} carries content.
func (pm *PromptManager) CreatePrompt(transcript string, record *VideoRecord) (string, error) {
	text, err := pm.templateText()
	if err != nil {
		return "", err
	}

	tmpl, err := template.New(promptFilename).Parse(text)
	if err != nil {
		return "", fmt.Errorf("parsing prompt template: %w", err)
	}

	var out strings.Builder
	if err := tmpl.Execute(&out, newPromptFields(transcript, record)); err != nil {
		return "", fmt.Errorf("executing prompt template: %w", err)
	}
	return out.String(), nil
}

var templateExts = []string{".txt", ".md", ".tmpl", ".template"}

// IsLikelyFilePath guesses whether a --prompt value names a file rather than
// being the template itself.
func IsLikelyFilePath(s string) bool {
	if strings.ContainsAny(s, `/\`) {
		return true
	}
	for _, ext := range templateExts {
		if strings.Contains(s, ext) {
			return true
		}
	}
	// long or multi-word values are prompt text
	return len(s) <= 200 && !strings.ContainsAny(s, " \n")
}

package manifest

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// TemplateManifestName is the metadata file inside a template directory.
const TemplateManifestName = "template.toml"

// ParsePlugin unmarshals raw tasker-plugin.toml bytes. Structural
// validation is ValidatePlugin's job; this only decodes.
func ParsePlugin(data []byte) (*PluginFile, error) {
	var file PluginFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing plugin manifest: %w", err)
	}
	return &file, nil
}

// ParseTemplate unmarshals raw template.toml bytes.
func ParseTemplate(data []byte) (*TemplateFile, error) {
	var file TemplateFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing template manifest: %w", err)
	}
	return &file, nil
}

// readFile reads the contents of a file at the given path.
func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}
	return data, nil
}

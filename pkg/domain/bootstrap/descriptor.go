package bootstrap

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	xe "github.com/twinsights/modelgw/pkg/errors"
)

// each built-in model directory carries one descriptor file.
const descriptorName = "model.yaml"

// Descriptor is the registration metadata of one built-in model.
//
// Readme and Examples are optional: fields a descriptor omits are
// recovered from the image at registration time, like any other
// registration.
type Descriptor struct {
	Image            string `yaml:"image"`
	Title            string `yaml:"title"`
	ShortDescription string `yaml:"shortDescription"`
	Authors          string `yaml:"authors"`

	// Readme inline, or ReadmeFile relative to the descriptor's
	// directory. Readme wins when both are set.
	Readme     string `yaml:"readme"`
	ReadmeFile string `yaml:"readmeFile"`

	Examples []any `yaml:"examples"`
}

// LoadDescriptor reads the descriptor of one built-in model directory.
func LoadDescriptor(dir string) (Descriptor, error) {
	content, err := os.ReadFile(filepath.Join(dir, descriptorName))
	if err != nil {
		return Descriptor{}, xe.Wrap(err)
	}

	var d Descriptor
	if err := yaml.Unmarshal(content, &d); err != nil {
		return Descriptor{}, xe.WrapWithNote("broken model descriptor", err)
	}

	if d.Readme == "" && d.ReadmeFile != "" {
		readme, err := os.ReadFile(filepath.Join(dir, d.ReadmeFile))
		if err != nil {
			return Descriptor{}, xe.WrapWithNote("descriptor points at unreadable readme", err)
		}
		d.Readme = string(readme)
	}

	if d.Image == "" {
		return Descriptor{}, xe.New(`descriptor misses "image"`)
	}
	return d, nil
}

// FindDescriptorDirs lists the built-in model directories under root:
// the immediate subdirectories holding a descriptor file.
func FindDescriptorDirs(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, xe.Wrap(err)
	}

	dirs := []string{}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		dir := filepath.Join(root, e.Name())
		if _, err := os.Stat(filepath.Join(dir, descriptorName)); err != nil {
			continue
		}
		dirs = append(dirs, dir)
	}
	return dirs, nil
}

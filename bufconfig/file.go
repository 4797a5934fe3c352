package bufconfig

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/alexdima/edcore-sub000/buffer"
)

// LoadPolicyFile loads a leaf-sizing policy from path. The format is
// chosen by extension: ".yaml"/".yml" is parsed as YAML, anything else as
// JSON.
func LoadPolicyFile(path string) (buffer.Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		// Return the error directly so callers can use os.IsNotExist(err).
		return buffer.Policy{}, err
	}

	var pf PolicyFile
	if isYAMLPath(path) {
		if err := yaml.Unmarshal(data, &pf); err != nil {
			return buffer.Policy{}, errors.Wrapf(err, "yaml.Unmarshal")
		}
	} else {
		if err := json.Unmarshal(data, &pf); err != nil {
			return buffer.Policy{}, errors.Wrapf(err, "json.Unmarshal")
		}
	}

	policy := pf.ToPolicy()
	if err := policy.Validate(); err != nil {
		return buffer.Policy{}, errors.Wrapf(err, "policy.Validate")
	}
	return policy, nil
}

// SavePolicyFile writes p to path, in the format implied by its extension
// (see LoadPolicyFile).
func SavePolicyFile(path string, p buffer.Policy) error {
	pf := FromPolicy(p)

	var data []byte
	var err error
	if isYAMLPath(path) {
		data, err = yaml.Marshal(pf)
	} else {
		data, err = json.MarshalIndent(pf, "", "  ")
	}
	if err != nil {
		return errors.Wrapf(err, "marshal policy")
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrapf(err, "os.MkdirAll")
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(err, "os.WriteFile")
	}
	return nil
}

func isYAMLPath(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// Package policyfile loads a keeper deployment from a YAML or TOML document:
// session configuration, the route rule table, and the credential directory.
//
//	config:
//	  login_path: /login
//	  unmatched_policy: require_auth
//	rules:
//	  - pattern: /admin
//	    allowed_roles: [admin]
//	    required_permissions: [admin.access]
//	users:
//	  - principal:
//	      id: prin_01jb8x6c2zf3q9v0a1b2c3d4e5
//	      contact_handle: admin@hawkly.io
//	      role: admin
//	      permissions: [admin.access]
//	    secret_hash: $2a$10$...
//
// An empty rules or users section falls back to rule.Defaults and
// credential.Demo.
package policyfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/xraph/keeper"
	"github.com/xraph/keeper/credential"
	"github.com/xraph/keeper/rule"
)

// Format names a document encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// ErrUnknownFormat is returned for file extensions other than .yaml, .yml
// and .toml.
var ErrUnknownFormat = errors.New("policyfile: unknown format")

// Document is the decoded policy file.
type Document struct {
	Config keeper.Config      `yaml:"config,omitempty" toml:"config,omitempty"`
	Rules  []rule.Rule        `yaml:"rules,omitempty" toml:"rules,omitempty"`
	Users  []credential.Entry `yaml:"users,omitempty" toml:"users,omitempty"`
}

// FormatOf infers the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, path)
	}
}

// Load reads and parses the file at path.
func Load(path string) (*Document, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("policyfile: read %q: %w", path, err)
	}
	doc, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("policyfile: %q: %w", path, err)
	}
	return doc, nil
}

// Parse decodes data and validates the result.
func Parse(data []byte, format Format) (*Document, error) {
	doc := new(Document)
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(doc); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	case FormatTOML:
		md, err := toml.Decode(string(data), doc)
		if err != nil {
			return nil, fmt.Errorf("decode toml: %w", err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("decode toml: unknown keys %v", undecoded)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return doc, nil
}

// Marshal encodes d in format.
func Marshal(d *Document, format Format) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(d); err != nil {
			return nil, fmt.Errorf("policyfile: encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("policyfile: encode yaml: %w", err)
		}
	case FormatTOML:
		if err := toml.NewEncoder(&buf).Encode(d); err != nil {
			return nil, fmt.Errorf("policyfile: encode toml: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	return buf.Bytes(), nil
}

// Validate checks the config, rules and users.
func (d *Document) Validate() error {
	if err := d.Config.Validate(); err != nil {
		return err
	}
	if _, err := d.RuleTable(); err != nil {
		return err
	}
	if _, err := d.Directory(); err != nil {
		return err
	}
	return nil
}

// RuleTable builds the rule table, or rule.Defaults when no rules are set.
func (d *Document) RuleTable() (*rule.Table, error) {
	if len(d.Rules) == 0 {
		return rule.Defaults(), nil
	}
	t, err := rule.NewTable(d.Rules...)
	if err != nil {
		return nil, fmt.Errorf("policyfile: rules: %w", err)
	}
	return t, nil
}

// Directory builds the credential directory, or credential.Demo when no
// users are set.
func (d *Document) Directory() (*credential.Static, error) {
	if len(d.Users) == 0 {
		return credential.Demo(), nil
	}
	dir, err := credential.NewStatic(d.Users...)
	if err != nil {
		return nil, fmt.Errorf("policyfile: users: %w", err)
	}
	return dir, nil
}

// Options returns keeper options for the document's config, rules and
// directory. Pass them to both keeper.NewSession and keeper.NewGuard.
func (d *Document) Options() ([]keeper.Option, error) {
	table, err := d.RuleTable()
	if err != nil {
		return nil, err
	}
	dir, err := d.Directory()
	if err != nil {
		return nil, err
	}
	return []keeper.Option{
		keeper.WithConfig(d.Config),
		keeper.WithRules(table),
		keeper.WithDirectory(dir),
	}, nil
}

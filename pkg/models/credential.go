package models

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Where to read a secret from: a literal string, or a provider id pair
// such as {"aws.ssm": "/idanalyzer/api-key"}.
type Credential struct {
	Provider string
	ID       string
}

func LiteralCredential(s string) Credential {
	return Credential{Provider: "string", ID: s}
}

func (c *Credential) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*c = LiteralCredential(node.Value)
		return nil
	case yaml.MappingNode:
		var o map[string]string
		if err := node.Decode(&o); err != nil {
			return err
		}
		if len(o) > 1 {
			return fmt.Errorf("only one credential provider can be specified")
		}
		for provider, id := range o {
			*c = Credential{
				Provider: provider,
				ID:       id,
			}
			return nil
		}
		return nil
	}
	return fmt.Errorf("invalid node kind: %v", node.Kind)
}

func (c *Credential) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*c = LiteralCredential(s)
		return nil
	}
	var o map[string]string
	if err := json.Unmarshal(data, &o); err != nil {
		return err
	}
	if len(o) > 1 {
		return fmt.Errorf("only one credential provider can be specified")
	}
	*c = Credential{}
	for provider, id := range o {
		*c = Credential{Provider: provider, ID: id}
	}
	return nil
}

func (c Credential) IsZero() bool {
	return c.Provider == "" && c.ID == ""
}

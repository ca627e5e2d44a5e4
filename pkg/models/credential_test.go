package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"gopkg.in/yaml.v3"
)

func TestCredentialYAML(t *testing.T) {
	cases := []struct {
		doc      string
		expected Credential
		err      bool
	}{
		{`key: literal`, Credential{Provider: "string", ID: "literal"}, false},
		{`key: {env: IDANALYZER_KEY}`, Credential{Provider: "env", ID: "IDANALYZER_KEY"}, false},
		{`key: {aws.ssm: /idanalyzer/key}`, Credential{Provider: "aws.ssm", ID: "/idanalyzer/key"}, false},
		{`key: {env: A, file: B}`, Credential{}, true},
		{`key: [a, b]`, Credential{}, true},
	}

	for _, c := range cases {
		var out struct {
			Key Credential `yaml:"key"`
		}
		err := yaml.Unmarshal([]byte(c.doc), &out)
		if c.err {
			assert.Error(t, err, c.doc)
			continue
		}
		assert.NoError(t, err, c.doc)
		assert.Equal(t, c.expected, out.Key, c.doc)
	}
}

func TestCredentialJSON(t *testing.T) {
	var c Credential
	assert.NoError(t, json.Unmarshal([]byte(`"abc"`), &c))
	assert.Equal(t, LiteralCredential("abc"), c)

	assert.NoError(t, json.Unmarshal([]byte(`{"file":"/run/key"}`), &c))
	assert.Equal(t, Credential{Provider: "file", ID: "/run/key"}, c)

	assert.Error(t, json.Unmarshal([]byte(`{"file":"a","env":"b"}`), &c))
}

func TestCredentialIsZero(t *testing.T) {
	assert.True(t, Credential{}.IsZero())
	assert.False(t, LiteralCredential("").IsZero())
	assert.False(t, Credential{Provider: "env", ID: "X"}.IsZero())
}

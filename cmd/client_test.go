package cmd

import (
	"encoding/json"
	"testing"

	"coa/internal/errdefs"
	"coa/internal/formatting"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestClientAdd(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run("client", "add", "demo", "--client-id", "id1", "--secret-key", "secret1", "--scope", "view_profile")
	require.NoError(t, err)
	assert.Contains(t, out, "Registered client demo")
	assert.Contains(t, out, "view_profile")

	out, err = env.run("client", "get", "id1", "-o", "json", "--show-secrets")
	require.NoError(t, err)

	var view formatting.ClientView
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Equal(t, formatting.ClientView{Name: "demo", ClientID: "id1", SecretKey: "secret1", Scope: "view_profile"}, view)
}

func TestClientAdd_BusinessScope(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run("client", "add", "biz", "--client-id", "id2", "--secret-key", "secret2", "--scope", "view_profile,access_business_api")
	require.NoError(t, err)

	out, err := env.run("client", "get", "biz", "-o", "yaml")
	require.NoError(t, err)

	var view formatting.ClientView
	require.NoError(t, yaml.Unmarshal([]byte(out), &view))
	assert.Equal(t, "view_profile+access_business_api", view.Scope)
	assert.Equal(t, "****", view.SecretKey)
}

func TestClientAdd_Rejected(t *testing.T) {
	env := newTestEnv(t)
	env.addClient(t, "demo", "id1")

	tests := []struct {
		name     string
		args     []string
		exitCode int
	}{
		{"duplicate name", []string{"client", "add", "demo", "--client-id", "id9", "--secret-key", "s"}, ExitCodeInvalid},
		{"duplicate client id", []string{"client", "add", "other", "--client-id", "id1", "--secret-key", "s"}, ExitCodeInvalid},
		{"missing secret", []string{"client", "add", "other", "--client-id", "id9"}, ExitCodeInvalid},
		{"unknown scope", []string{"client", "add", "other", "--client-id", "id9", "--secret-key", "s", "--scope", "admin"}, ExitCodeInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.run(tt.args...)
			require.Error(t, err)
			assert.Equal(t, tt.exitCode, getExitCode(err))
		})
	}

	out, err := env.run("client", "list", "-o", "json")
	require.NoError(t, err)
	var views []formatting.ClientView
	require.NoError(t, json.Unmarshal([]byte(out), &views))
	assert.Len(t, views, 1)
}

func TestClientList(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run("client", "list")
	require.Error(t, err)
	assert.True(t, errdefs.IsNotFound(err))
	assert.Equal(t, ExitCodeNotFound, getExitCode(err))

	env.addClient(t, "demo", "id1")
	env.addClient(t, "biz", "id2")

	out, err := env.run("client", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "demo")
	assert.Contains(t, out, "biz")
	assert.NotContains(t, out, "secret-id1")

	out, err = env.run("client", "list", "-o", "json")
	require.NoError(t, err)
	var views []formatting.ClientView
	require.NoError(t, json.Unmarshal([]byte(out), &views))
	require.Len(t, views, 2)
	assert.Equal(t, "demo", views[0].Name)
	assert.Equal(t, "biz", views[1].Name)
}

func TestClientList_BadOutputFormat(t *testing.T) {
	env := newTestEnv(t)
	env.addClient(t, "demo", "id1")

	_, err := env.run("client", "list", "-o", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported output format")
}

func TestClientDelete(t *testing.T) {
	env := newTestEnv(t)
	env.addClient(t, "demo", "id1")
	env.addClient(t, "biz", "id2")

	out, err := env.run("client", "delete", "demo")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted client demo")

	_, err = env.run("client", "get", "demo")
	assert.Equal(t, ExitCodeNotFound, getExitCode(err))

	_, err = env.run("client", "get", "biz")
	assert.NoError(t, err)

	_, err = env.run("client", "delete", "demo")
	require.Error(t, err)
	assert.Equal(t, ExitCodeNotFound, getExitCode(err))
}

func TestClientGet_Args(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.run("client", "get")
	require.Error(t, err)
	assert.Equal(t, ExitCodeError, getExitCode(err))
}

// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func TestFlagDefinitions(t *testing.T) {
	app := newApp()

	findCommand := func(name string) *cli.Command {
		for _, cmd := range app.Commands {
			if cmd.Name == name {
				return cmd
			}
		}
		return nil
	}
	findStringFlag := func(cmd *cli.Command, name string) *cli.StringFlag {
		for _, flag := range cmd.Flags {
			if f, ok := flag.(*cli.StringFlag); ok && f.Name == name {
				return f
			}
		}
		return nil
	}

	t.Run("db is required on every command", func(t *testing.T) {
		for _, name := range []string{"process", "status", "retry", "search", "reembed"} {
			cmd := findCommand(name)
			require.NotNil(t, cmd, name)
			dbFlag := findStringFlag(cmd, "db")
			require.NotNil(t, dbFlag, name)
			assert.True(t, dbFlag.Required, name)
		}
	})

	t.Run("embedding-host has default value", func(t *testing.T) {
		hostFlag := findStringFlag(findCommand("process"), "embedding-host")
		require.NotNil(t, hostFlag)
		assert.Equal(t, "http://localhost:11434/v1", hostFlag.Value)
	})

	t.Run("embedding-model has no default value", func(t *testing.T) {
		modelFlag := findStringFlag(findCommand("process"), "embedding-model")
		require.NotNil(t, modelFlag)
		assert.Empty(t, modelFlag.Value)
	})

	t.Run("model flags read the environment", func(t *testing.T) {
		modelFlag := findStringFlag(findCommand("process"), "embedding-model")
		require.NotNil(t, modelFlag)
		assert.Contains(t, modelFlag.EnvVars, "DOCPIPE_EMBEDDING_MODEL")
	})
}

func TestInvalidLogLevel(t *testing.T) {
	err := newApp().Run([]string{"docpipe", "--log-level", "verbose", "status", "--db", t.TempDir()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestEmbeddingModelRequiredWithoutMock(t *testing.T) {
	err := newApp().Run([]string{"docpipe", "status", "--db", t.TempDir()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "embedding-model")
}

func TestProcessAndStatusWithMockProviders(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "db")
	docPath := filepath.Join(t.TempDir(), "report.pdf")
	require.NoError(t, os.WriteFile(docPath, []byte("%PDF-1.4 fake"), 0o600))

	err := newApp().Run([]string{"docpipe", "process", "--db", dbPath, "--mock", docPath})
	require.NoError(t, err)

	err = newApp().Run([]string{"docpipe", "status", "--db", dbPath, "--mock"})
	require.NoError(t, err)
}

func TestSearchWithMockProviders(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "db")
	docPath := filepath.Join(t.TempDir(), "report.pdf")
	require.NoError(t, os.WriteFile(docPath, []byte("%PDF-1.4 fake"), 0o600))

	require.NoError(t, newApp().Run([]string{"docpipe", "process", "--db", dbPath, "--mock", docPath}))

	err := newApp().Run([]string{"docpipe", "search", "--db", dbPath, "--mock", "synthetic", "paragraph"})
	require.NoError(t, err)
}

func TestProcessRequiresFileArgument(t *testing.T) {
	err := newApp().Run([]string{"docpipe", "process", "--db", t.TempDir(), "--mock"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file argument")
}

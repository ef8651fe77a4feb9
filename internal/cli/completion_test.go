package cli

import (
	"bytes"
	"strings"
	"testing"
)

func TestGenerateCompletion(t *testing.T) {
	t.Parallel()
	engines := []string{"matrix", "poly", "iterative"}

	testCases := []struct {
		name      string
		shell     string
		expectErr bool
		checkFunc func(t *testing.T, output string)
	}{
		{
			name:      "Bash completion",
			shell:     "bash",
			expectErr: false,
			checkFunc: func(t *testing.T, output string) {
				if !strings.Contains(output, "Bash completion script") {
					t.Error("Bash script should contain 'Bash completion script'")
				}
				if !strings.Contains(output, "matrix poly iterative") {
					t.Error("Bash script should contain engine list")
				}
				if !strings.Contains(output, "_reccalc_completions") {
					t.Error("Bash script should contain completion function")
				}
			},
		},
		{
			name:      "Zsh completion",
			shell:     "zsh",
			expectErr: false,
			checkFunc: func(t *testing.T, output string) {
				if !strings.Contains(output, "Zsh completion script") {
					t.Error("Zsh script should contain 'Zsh completion script'")
				}
				if !strings.Contains(output, "matrix poly iterative") {
					t.Error("Zsh script should contain engine list")
				}
				if !strings.Contains(output, "#compdef reccalc") {
					t.Error("Zsh script should contain compdef directive")
				}
			},
		},
		{
			name:      "Fish completion",
			shell:     "fish",
			expectErr: false,
			checkFunc: func(t *testing.T, output string) {
				if !strings.Contains(output, "Fish completion script") {
					t.Error("Fish script should contain 'Fish completion script'")
				}
				if !strings.Contains(output, "matrix poly iterative") {
					t.Error("Fish script should contain engine list")
				}
				if !strings.Contains(output, "complete -c reccalc") {
					t.Error("Fish script should contain complete commands")
				}
			},
		},
		{
			name:      "Unsupported shell",
			shell:     "powershell",
			expectErr: true,
			checkFunc: func(t *testing.T, output string) {
				// No output expected for error case
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			err := GenerateCompletion(&buf, tc.shell, engines)

			if tc.expectErr {
				if err == nil {
					t.Error("Expected error but got none")
				}
				if !strings.Contains(err.Error(), "unsupported shell") {
					t.Errorf("Error message should mention 'unsupported shell', got: %v", err)
				}
			} else {
				if err != nil {
					t.Errorf("Unexpected error: %v", err)
				}
				output := buf.String()
				if output == "" {
					t.Error("Output should not be empty")
				}
				if tc.checkFunc != nil {
					tc.checkFunc(t, output)
				}
			}
		})
	}
}

func TestGenerateCompletion_EmptyEngines(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	err := GenerateCompletion(&buf, "bash", []string{})
	if err != nil {
		t.Errorf("Should not error with empty engine list: %v", err)
	}
	if buf.Len() == 0 {
		t.Error("Should still emit a script with an empty engine list")
	}
}

func TestGenerateCompletion_ManyEngines(t *testing.T) {
	t.Parallel()
	engines := []string{"matrix", "poly", "iterative", "gmp"}
	var buf bytes.Buffer
	err := GenerateCompletion(&buf, "bash", engines)
	if err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
	output := buf.String()
	for _, engine := range engines {
		if !strings.Contains(output, engine) {
			t.Errorf("Output should contain engine '%s'", engine)
		}
	}
}

// Package cli provides shell completion script generation for various shells.
package cli

import (
	"fmt"
	"io"
	"strings"
)

// GenerateCompletion generates a shell completion script for the specified shell.
//
// Parameters:
//   - out: The writer to output the completion script.
//   - shell: The shell type ("bash", "zsh", "fish").
//   - engines: List of available engine names.
//
// Returns:
//   - error: An error if the shell is not supported.
func GenerateCompletion(out io.Writer, shell string, engines []string) error {
	switch shell {
	case "bash":
		return generateBashCompletion(out, engines)
	case "zsh":
		return generateZshCompletion(out, engines)
	case "fish":
		return generateFishCompletion(out, engines)
	default:
		return fmt.Errorf("unsupported shell: %s (accepted values: bash, zsh, fish)", shell)
	}
}

// generateBashCompletion generates a Bash completion script.
func generateBashCompletion(out io.Writer, engines []string) error {
	script := `# Bash completion script for reccalc
# Add this to your ~/.bashrc or ~/.bash_completion

_reccalc_completions() {
    local cur prev opts engines
    COMPREPLY=()
    cur="${COMP_WORDS[COMP_CWORD]}"
    prev="${COMP_WORDS[COMP_CWORD-1]}"

    # Main options
    opts="--help -h --version -u -a -n --modulus --engine --all --charpoly --minpoly --show-matrix -v --timeout --parallel-threshold --calibrate --calibration-file --json --server --addr --rate-limit --burst --no-color --theme --truncate --output -o --quiet -q --repl --completion"

    # Available engines
    engines="%s"

    case "${prev}" in
        --engine)
            COMPREPLY=( $(compgen -W "${engines}" -- "${cur}") )
            return 0
            ;;
        --completion)
            COMPREPLY=( $(compgen -W "bash zsh fish" -- "${cur}") )
            return 0
            ;;
        --theme)
            COMPREPLY=( $(compgen -W "dark light none" -- "${cur}") )
            return 0
            ;;
        --output|-o|--calibration-file)
            # File/directory completion
            COMPREPLY=( $(compgen -f -- "${cur}") )
            return 0
            ;;
        --addr)
            COMPREPLY=( $(compgen -W ":8080 :3000 :5000 :9000" -- "${cur}") )
            return 0
            ;;
        --timeout)
            COMPREPLY=( $(compgen -W "1m 5m 10m 30m 1h" -- "${cur}") )
            return 0
            ;;
        --parallel-threshold)
            COMPREPLY=( $(compgen -W "1024 2048 4096 8192 16384" -- "${cur}") )
            return 0
            ;;
    esac

    if [[ "${cur}" == -* ]]; then
        COMPREPLY=( $(compgen -W "${opts}" -- "${cur}") )
        return 0
    fi
}

complete -F _reccalc_completions reccalc
`
	_, err := fmt.Fprintf(out, script, strings.Join(engines, " "))
	return err
}

// generateZshCompletion generates a Zsh completion script.
func generateZshCompletion(out io.Writer, engines []string) error {
	script := `#compdef reccalc

# Zsh completion script for reccalc
# Add this to your ~/.zshrc or place in $fpath

_reccalc() {
    local -a engines
    engines=(%s)

    _arguments -s \
        '(-h --help)'{-h,--help}'[Show help message]' \
        '--version[Show version information]' \
        '-u[Comma-separated initial terms]:terms:' \
        '-a[Comma-separated recurrence coefficients]:coefficients:' \
        '-n[Index n of the term to evaluate]:number:' \
        '--modulus[Reduce the result modulo this integer]:modulus:' \
        '--engine[Evaluation engine]:engine:($engines)' \
        '--all[Run every registered engine and compare results]' \
        '--charpoly[Print the characteristic polynomial]' \
        '--minpoly[Print the minimal polynomial]' \
        '--show-matrix[Print the companion transformation matrix]' \
        '-v[Display full result value]' \
        '--timeout[Maximum execution time]:duration:(1m 5m 10m 30m 1h)' \
        '--parallel-threshold[Parallelism threshold in bits]:bits:(1024 2048 4096 8192 16384)' \
        '--calibrate[Run calibration mode]' \
        '--calibration-file[Calibration profile file]:file:_files' \
        '--json[Output in JSON format]' \
        '--server[Start HTTP server mode]' \
        '--addr[Server listen address]:addr:(:8080 :3000 :5000 :9000)' \
        '--rate-limit[Server rate limit in requests/second]:limit:' \
        '--burst[Server rate-limit burst size]:burst:' \
        '--no-color[Disable colored output]' \
        '--theme[CLI color theme]:theme:(dark light none)' \
        '--truncate[Head/tail digits for huge results]:digits:' \
        '(-o --output)'{-o,--output}'[Output file path]:file:_files' \
        '(-q --quiet)'{-q,--quiet}'[Quiet mode for scripts]' \
        '--repl[Start interactive REPL mode]' \
        '--completion[Generate completion script]:shell:(bash zsh fish)'
}

_reccalc "$@"
`
	_, err := fmt.Fprintf(out, script, strings.Join(engines, " "))
	return err
}

// generateFishCompletion generates a Fish completion script.
func generateFishCompletion(out io.Writer, engines []string) error {
	script := `# Fish completion script for reccalc
# Add this to ~/.config/fish/completions/reccalc.fish

# Disable file completion by default
complete -c reccalc -f

# Help and version
complete -c reccalc -s h -l help -d 'Show help message'
complete -c reccalc -l version -d 'Show version information'

# Recurrence definition
complete -c reccalc -s u -d 'Comma-separated initial terms' -x
complete -c reccalc -s a -d 'Comma-separated recurrence coefficients' -x
complete -c reccalc -s n -d 'Index of the term to evaluate' -x
complete -c reccalc -l modulus -d 'Reduce the result modulo this integer' -x

# Engine selection
complete -c reccalc -l engine -d 'Evaluation engine' -xa '%s'
complete -c reccalc -l all -d 'Run every registered engine'

# Analyses
complete -c reccalc -l charpoly -d 'Print the characteristic polynomial'
complete -c reccalc -l minpoly -d 'Print the minimal polynomial'
complete -c reccalc -l show-matrix -d 'Print the companion matrix'

# Runtime
complete -c reccalc -s v -d 'Display full result value'
complete -c reccalc -l timeout -d 'Maximum execution time' -xa '1m 5m 10m 30m 1h'
complete -c reccalc -l parallel-threshold -d 'Parallelism threshold in bits' -xa '1024 2048 4096 8192 16384'

# Calibration
complete -c reccalc -l calibrate -d 'Run calibration mode'
complete -c reccalc -l calibration-file -d 'Calibration profile file' -rF

# Output options
complete -c reccalc -l json -d 'Output in JSON format'
complete -c reccalc -s o -l output -d 'Output file path' -rF
complete -c reccalc -s q -l quiet -d 'Quiet mode for scripts'
complete -c reccalc -l no-color -d 'Disable colored output'
complete -c reccalc -l theme -d 'CLI color theme' -xa 'dark light none'
complete -c reccalc -l truncate -d 'Head/tail digits for huge results' -x

# Server mode
complete -c reccalc -l server -d 'Start HTTP server mode'
complete -c reccalc -l addr -d 'Server listen address' -xa ':8080 :3000 :5000 :9000'
complete -c reccalc -l rate-limit -d 'Server rate limit' -x
complete -c reccalc -l burst -d 'Server rate-limit burst size' -x

# Interactive and completion
complete -c reccalc -l repl -d 'Start interactive REPL mode'
complete -c reccalc -l completion -d 'Generate completion script' -xa 'bash zsh fish'
`
	_, err := fmt.Fprintf(out, script, strings.Join(engines, " "))
	return err
}

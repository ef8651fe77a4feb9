// Package cli provides the REPL (Read-Eval-Print Loop) functionality
// for interactive recurrence evaluation.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math/big"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/agbru/reccalc/internal/recurrence"
)

// REPLConfig holds configuration for the REPL session.
type REPLConfig struct {
	// DefaultEngine is the default engine to use for evaluations.
	DefaultEngine string
	// Timeout is the maximum duration for each evaluation.
	Timeout time.Duration
	// Threshold is the parallelism threshold in bits.
	Threshold int
	// TruncateDigits is the head/tail digit count for truncated display.
	TruncateDigits int
}

// REPL represents an interactive recurrence calculator session.
type REPL struct {
	config        REPLConfig
	registry      map[string]recurrence.Evaluator
	currentEngine string
	seq           *recurrence.Sequence
	modulus       *big.Int
	in            io.Reader
	out           io.Writer
}

// NewREPL creates a new REPL instance.
//
// Parameters:
//   - registry: Map of available evaluators keyed by engine name.
//   - seq: The initial sequence to evaluate.
//   - config: REPL configuration.
//
// Returns:
//   - *REPL: A new REPL instance.
func NewREPL(registry map[string]recurrence.Evaluator, seq *recurrence.Sequence, config REPLConfig) *REPL {
	currentEngine := config.DefaultEngine
	if _, ok := registry[currentEngine]; !ok {
		// Pick the first available engine as default
		for name := range registry {
			currentEngine = name
			break
		}
	}

	return &REPL{
		config:        config,
		registry:      registry,
		currentEngine: currentEngine,
		seq:           seq,
		in:            os.Stdin,
		out:           os.Stdout,
	}
}

// SetInput sets a custom input reader (useful for testing).
func (r *REPL) SetInput(in io.Reader) {
	r.in = in
}

// SetOutput sets a custom output writer (useful for testing).
func (r *REPL) SetOutput(out io.Writer) {
	r.out = out
}

// Start begins the interactive REPL session.
// It continuously reads user input and processes commands until
// the user exits or EOF is reached.
func (r *REPL) Start() {
	r.printBanner()
	r.printHelp()
	fmt.Fprintln(r.out)

	reader := bufio.NewReader(r.in)

	for {
		fmt.Fprint(r.out, ColorGreen()+"rec> "+ColorReset())

		input, err := reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(r.out, "\nGoodbye!")
				return
			}
			fmt.Fprintf(r.out, "%sRead error: %v%s\n", ColorRed(), err, ColorReset())
			continue
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if !r.processCommand(input) {
			return // Exit command received
		}
	}
}

// printBanner displays the REPL welcome banner.
func (r *REPL) printBanner() {
	fmt.Fprintf(r.out, "\n%s╔══════════════════════════════════════════════════════════╗%s\n", ColorCyan(), ColorReset())
	fmt.Fprintf(r.out, "%s║%s     %s🔢 Recurrence Calculator - Interactive Mode%s           %s║%s\n",
		ColorCyan(), ColorReset(), ColorBold(), ColorReset(), ColorCyan(), ColorReset())
	fmt.Fprintf(r.out, "%s╚══════════════════════════════════════════════════════════╝%s\n\n", ColorCyan(), ColorReset())
}

// printHelp displays available commands.
func (r *REPL) printHelp() {
	fmt.Fprintf(r.out, "%sAvailable commands:%s\n", ColorBold(), ColorReset())
	fmt.Fprintf(r.out, "  %sterm <n>%s          - Evaluate u(n) with the current engine\n", ColorYellow(), ColorReset())
	fmt.Fprintf(r.out, "  %sseq <u...> <a...>%s - Redefine the sequence (comma-separated lists)\n", ColorYellow(), ColorReset())
	fmt.Fprintf(r.out, "  %smod <m>%s           - Set the modulus (0 clears it)\n", ColorYellow(), ColorReset())
	fmt.Fprintf(r.out, "  %sengine <name>%s     - Change engine (%s)\n", ColorYellow(), ColorReset(), r.getEngineList())
	fmt.Fprintf(r.out, "  %scompare <n>%s       - Compare all engines for u(n)\n", ColorYellow(), ColorReset())
	fmt.Fprintf(r.out, "  %scharpoly%s          - Display the characteristic polynomial\n", ColorYellow(), ColorReset())
	fmt.Fprintf(r.out, "  %sminpoly%s           - Display the minimal polynomial\n", ColorYellow(), ColorReset())
	fmt.Fprintf(r.out, "  %smatrix%s            - Display the companion transformation matrix\n", ColorYellow(), ColorReset())
	fmt.Fprintf(r.out, "  %slist%s              - List available engines\n", ColorYellow(), ColorReset())
	fmt.Fprintf(r.out, "  %sstatus%s            - Display current configuration\n", ColorYellow(), ColorReset())
	fmt.Fprintf(r.out, "  %shelp%s              - Display this help\n", ColorYellow(), ColorReset())
	fmt.Fprintf(r.out, "  %sexit%s / %squit%s      - Exit interactive mode\n", ColorYellow(), ColorReset(), ColorYellow(), ColorReset())
}

// getEngineList returns a comma-separated list of available engines.
func (r *REPL) getEngineList() string {
	engines := make([]string, 0, len(r.registry))
	for name := range r.registry {
		engines = append(engines, name)
	}
	return strings.Join(engines, ", ")
}

// processCommand parses and executes a user command.
// Returns false if the REPL should exit.
func (r *REPL) processCommand(input string) bool {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return true
	}

	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "term", "t":
		r.cmdTerm(args)
	case "seq", "s":
		r.cmdSeq(args)
	case "mod", "m":
		r.cmdMod(args)
	case "engine", "e":
		r.cmdEngine(args)
	case "compare", "cmp":
		r.cmdCompare(args)
	case "charpoly", "cp":
		r.cmdCharPoly()
	case "minpoly", "mp":
		r.cmdMinPoly()
	case "matrix", "mat":
		r.cmdMatrix()
	case "list", "ls":
		r.cmdList()
	case "status", "st":
		r.cmdStatus()
	case "help", "h", "?":
		r.printHelp()
	case "exit", "quit", "q":
		fmt.Fprintf(r.out, "%sGoodbye!%s\n", ColorGreen(), ColorReset())
		return false
	default:
		// Try to interpret as an index for a quick evaluation
		if n, err := strconv.ParseInt(cmd, 10, 64); err == nil {
			r.evaluate(n)
		} else {
			fmt.Fprintf(r.out, "%sUnknown command: %s%s\n", ColorRed(), cmd, ColorReset())
			fmt.Fprintf(r.out, "Type %shelp%s to see available commands.\n", ColorYellow(), ColorReset())
		}
	}

	return true
}

// cmdTerm handles the "term" command.
func (r *REPL) cmdTerm(args []string) {
	if len(args) == 0 {
		fmt.Fprintf(r.out, "%sUsage: term <n>%s\n", ColorRed(), ColorReset())
		return
	}

	n, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		fmt.Fprintf(r.out, "%sInvalid index: %s%s\n", ColorRed(), args[0], ColorReset())
		return
	}

	r.evaluate(n)
}

// evaluate performs a term evaluation with the current engine.
func (r *REPL) evaluate(n int64) {
	eval, ok := r.registry[r.currentEngine]
	if !ok {
		fmt.Fprintf(r.out, "%sEngine not found: %s%s\n", ColorRed(), r.currentEngine, ColorReset())
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.config.Timeout)
	defer cancel()

	target := fmt.Sprintf("u(%d)", n)
	if r.modulus != nil {
		target = fmt.Sprintf("u(%d) mod %s", n, r.modulus)
	}
	fmt.Fprintf(r.out, "Evaluating %s%s%s with %s%s%s...\n",
		ColorMagenta(), target, ColorReset(),
		ColorCyan(), eval.Name(), ColorReset())

	opts := recurrence.Options{
		ParallelThreshold: r.config.Threshold,
	}

	// Create a progress channel
	progressChan := make(chan recurrence.ProgressUpdate, 10)

	// Use DisplayProgress to show a spinner and progress bar
	var wg sync.WaitGroup
	wg.Add(1)
	go DisplayProgress(&wg, progressChan, 1, r.out)

	start := time.Now()
	result, err := eval.Evaluate(ctx, progressChan, 0, r.seq, n, r.modulus, opts)
	duration := time.Since(start)
	close(progressChan)
	wg.Wait()

	if err != nil {
		fmt.Fprintf(r.out, "%sError: %v%s\n", ColorRed(), err, ColorReset())
		return
	}

	// Format duration
	durationStr := FormatExecutionDuration(duration)

	// Display result
	fmt.Fprintf(r.out, "\n%sResult:%s\n", ColorBold(), ColorReset())
	fmt.Fprintf(r.out, "  Time: %s%s%s\n", ColorGreen(), durationStr, ColorReset())
	fmt.Fprintf(r.out, "  Bits:  %s%d%s\n", ColorCyan(), result.BitLen(), ColorReset())

	resultStr := result.String()
	numDigits := len(resultStr)
	fmt.Fprintf(r.out, "  Digits: %s%d%s\n", ColorCyan(), numDigits, ColorReset())

	edges := r.config.TruncateDigits
	if edges <= 0 {
		edges = DefaultDisplayEdges
	}
	if numDigits > TruncationLimit && numDigits > 2*edges {
		fmt.Fprintf(r.out, "  %s = %s%s...%s%s (truncated)\n",
			target, ColorGreen(), resultStr[:edges], resultStr[numDigits-edges:], ColorReset())
	} else {
		fmt.Fprintf(r.out, "  %s = %s%s%s\n", target, ColorGreen(), resultStr, ColorReset())
	}
	fmt.Fprintln(r.out)
}

// cmdSeq handles the "seq" command, redefining the current sequence.
func (r *REPL) cmdSeq(args []string) {
	if len(args) != 2 {
		fmt.Fprintf(r.out, "%sUsage: seq <u0,u1,...> <a0,a1,...>%s\n", ColorRed(), ColorReset())
		return
	}

	initial, err := parseBigIntList(args[0])
	if err != nil {
		fmt.Fprintf(r.out, "%sInvalid initial terms: %v%s\n", ColorRed(), err, ColorReset())
		return
	}
	coeffs, err := parseBigIntList(args[1])
	if err != nil {
		fmt.Fprintf(r.out, "%sInvalid coefficients: %v%s\n", ColorRed(), err, ColorReset())
		return
	}

	seq, err := recurrence.New(initial, coeffs)
	if err != nil {
		fmt.Fprintf(r.out, "%sError: %v%s\n", ColorRed(), err, ColorReset())
		return
	}

	r.seq = seq
	fmt.Fprintf(r.out, "%s%s%s\n", ColorCyan(), seq, ColorReset())
}

// cmdMod handles the "mod" command.
func (r *REPL) cmdMod(args []string) {
	if len(args) == 0 {
		fmt.Fprintf(r.out, "%sUsage: mod <m> (0 clears the modulus)%s\n", ColorRed(), ColorReset())
		return
	}

	m, ok := new(big.Int).SetString(args[0], 10)
	if !ok {
		fmt.Fprintf(r.out, "%sInvalid modulus: %s%s\n", ColorRed(), args[0], ColorReset())
		return
	}
	if m.Sign() < 0 {
		fmt.Fprintf(r.out, "%sModulus must be non-negative%s\n", ColorRed(), ColorReset())
		return
	}
	if m.Sign() == 0 {
		r.modulus = nil
		fmt.Fprintf(r.out, "Modulus cleared: results are now %sexact%s.\n", ColorGreen(), ColorReset())
		return
	}

	r.modulus = m
	fmt.Fprintf(r.out, "Modulus set to: %s%s%s\n", ColorGreen(), m, ColorReset())
}

// cmdEngine handles the "engine" command.
func (r *REPL) cmdEngine(args []string) {
	if len(args) == 0 {
		fmt.Fprintf(r.out, "%sUsage: engine <name>%s\n", ColorRed(), ColorReset())
		fmt.Fprintf(r.out, "Available engines: %s\n", r.getEngineList())
		return
	}

	name := strings.ToLower(args[0])
	if _, ok := r.registry[name]; !ok {
		fmt.Fprintf(r.out, "%sUnknown engine: %s%s\n", ColorRed(), name, ColorReset())
		fmt.Fprintf(r.out, "Available engines: %s\n", r.getEngineList())
		return
	}

	r.currentEngine = name
	fmt.Fprintf(r.out, "Engine changed to: %s%s%s\n", ColorGreen(), r.registry[name].Name(), ColorReset())
}

// cmdCompare handles the "compare" command.
func (r *REPL) cmdCompare(args []string) {
	if len(args) == 0 {
		fmt.Fprintf(r.out, "%sUsage: compare <n>%s\n", ColorRed(), ColorReset())
		return
	}

	n, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		fmt.Fprintf(r.out, "%sInvalid index: %s%s\n", ColorRed(), args[0], ColorReset())
		return
	}

	fmt.Fprintf(r.out, "\n%sComparison for u(%d):%s\n", ColorBold(), n, ColorReset())
	fmt.Fprintf(r.out, "%s─────────────────────────────────────────────%s\n", ColorCyan(), ColorReset())

	opts := recurrence.Options{
		ParallelThreshold: r.config.Threshold,
	}

	results := make(map[string]string)
	var firstResult string

	for name, eval := range r.registry {
		ctx, cancel := context.WithTimeout(context.Background(), r.config.Timeout)

		// Create a progress channel for this evaluation
		progressChan := make(chan recurrence.ProgressUpdate, 10)
		go func() {
			for range progressChan {
				// Discard progress updates
			}
		}()

		start := time.Now()
		result, err := eval.Evaluate(ctx, progressChan, 0, r.seq, n, r.modulus, opts)
		duration := time.Since(start)
		close(progressChan)
		cancel()

		if err != nil {
			fmt.Fprintf(r.out, "  %s%-20s%s: %sError - %v%s\n",
				ColorYellow(), name, ColorReset(),
				ColorRed(), err, ColorReset())
			continue
		}

		durationStr := FormatExecutionDuration(duration)
		resultStr := result.String()
		results[name] = resultStr

		if firstResult == "" {
			firstResult = resultStr
		}

		// Check consistency
		status := ColorGreen() + "✓" + ColorReset()
		if resultStr != firstResult {
			status = ColorRed() + "✗ INCONSISTENT" + ColorReset()
		}

		fmt.Fprintf(r.out, "  %s%-20s%s: %s%12s%s %s\n",
			ColorYellow(), name, ColorReset(),
			ColorCyan(), durationStr, ColorReset(),
			status)
	}

	fmt.Fprintf(r.out, "%s─────────────────────────────────────────────%s\n\n", ColorCyan(), ColorReset())
}

// cmdCharPoly displays the characteristic polynomial of the current sequence.
func (r *REPL) cmdCharPoly() {
	fmt.Fprintf(r.out, "Characteristic polynomial: %s%s%s\n",
		ColorCyan(), r.seq.CharacteristicPolynomial(), ColorReset())
}

// cmdMinPoly displays the minimal polynomial of the current sequence.
func (r *REPL) cmdMinPoly() {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.Timeout)
	defer cancel()

	minPoly, err := r.seq.MinimalPolynomial(ctx)
	if err != nil {
		fmt.Fprintf(r.out, "%sError: %v%s\n", ColorRed(), err, ColorReset())
		return
	}
	fmt.Fprintf(r.out, "Minimal polynomial: %s%s%s\n", ColorCyan(), minPoly, ColorReset())
	if minPoly.Degree() < r.seq.Order() {
		fmt.Fprintf(r.out, "%sNote: degree %d < order %d, the recurrence is degenerate.%s\n",
			ColorYellow(), minPoly.Degree(), r.seq.Order(), ColorReset())
	}
}

// cmdMatrix displays the companion transformation matrix.
func (r *REPL) cmdMatrix() {
	fmt.Fprintf(r.out, "Transformation matrix:\n%s%s%s\n",
		ColorCyan(), r.seq.TransformationMatrix(), ColorReset())
}

// cmdList handles the "list" command.
func (r *REPL) cmdList() {
	fmt.Fprintf(r.out, "\n%sAvailable engines:%s\n", ColorBold(), ColorReset())
	for name, eval := range r.registry {
		marker := "  "
		if name == r.currentEngine {
			marker = ColorGreen() + "► " + ColorReset()
		}
		fmt.Fprintf(r.out, "%s%s%-10s%s - %s\n", marker, ColorYellow(), name, ColorReset(), eval.Name())
	}
	fmt.Fprintln(r.out)
}

// cmdStatus displays current REPL configuration.
func (r *REPL) cmdStatus() {
	fmt.Fprintf(r.out, "\n%sCurrent configuration:%s\n", ColorBold(), ColorReset())
	fmt.Fprintf(r.out, "  Sequence:  %s%s%s\n", ColorCyan(), r.seq, ColorReset())
	fmt.Fprintf(r.out, "  Engine:    %s%s%s\n", ColorCyan(), r.currentEngine, ColorReset())
	modStatus := "none (exact)"
	if r.modulus != nil {
		modStatus = r.modulus.String()
	}
	fmt.Fprintf(r.out, "  Modulus:   %s%s%s\n", ColorCyan(), modStatus, ColorReset())
	fmt.Fprintf(r.out, "  Timeout:   %s%s%s\n", ColorCyan(), r.config.Timeout, ColorReset())
	fmt.Fprintf(r.out, "  Threshold: %s%d%s bits\n", ColorCyan(), r.config.Threshold, ColorReset())
	fmt.Fprintln(r.out)
}

// parseBigIntList parses a comma-separated list of integers.
func parseBigIntList(s string) ([]*big.Int, error) {
	parts := strings.Split(s, ",")
	values := make([]*big.Int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		v, ok := new(big.Int).SetString(p, 10)
		if !ok {
			return nil, fmt.Errorf("invalid integer %q", p)
		}
		values = append(values, v)
	}
	return values, nil
}

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"
)

const delimiter = "ghadapter_EOF"

func main() {
	if len(os.Args) < 2 {
		os.Exit(1)
	}

	var args []string
	if len(os.Args) > 2 {
		args = os.Args[2:]
	}

	cmd := exec.Command(os.Args[1], args...)
	cmd.Stdin = os.Stdin
	cmd.Stderr = os.Stderr

	output, err := cmd.Output()
	os.Stdout.Write(output)
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			os.Exit(exitErr.ExitCode())
		}
		os.Exit(1)
	}

	githubOutput := os.Getenv("GITHUB_OUTPUT")
	if githubOutput == "" {
		return
	}

	f, err := os.OpenFile(githubOutput, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open %s: %v\n", githubOutput, err)
		os.Exit(1)
	}
	defer f.Close()

	if err := writeOutputs(f, output); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write outputs: %v\n", err)
	}
}

// writeOutputs turns the top-level keys of a JSON object into step outputs.
// Objects and arrays are written as compact JSON, null as an empty string.
func writeOutputs(w io.Writer, data []byte) error {
	var result map[string]json.RawMessage
	if err := json.Unmarshal(data, &result); err != nil {
		return err
	}

	keys := make([]string, 0, len(result))
	for key := range result {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value, err := outputValue(result[key])
		if err != nil {
			return fmt.Errorf("key %s: %w", key, err)
		}
		if strings.Contains(value, "\n") {
			_, err = fmt.Fprintf(w, "%s<<%s\n%s\n%s\n", key, delimiter, value, delimiter)
		} else {
			_, err = fmt.Fprintf(w, "%s=%s\n", key, value)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func outputValue(raw json.RawMessage) (string, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", err
	}

	switch v := v.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case bool, float64:
		return string(raw), nil
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
}

package account

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/Mordecai-Wambua/User-Auth/internal/application/account/usecases"
)

// readPassword reads without echo. Tests replace it.
var readPassword = term.ReadPassword

// promptLine prints prompt and returns the trimmed line read from reader.
func promptLine(reader *bufio.Reader, w io.Writer, prompt string) (string, error) {
	if _, err := fmt.Fprintf(w, "%s: ", prompt); err != nil {
		return "", err
	}
	line, err := reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// promptPassword asks twice and requires both entries to match.
func promptPassword(w io.Writer) (string, error) {
	read := func(prompt string) (string, error) {
		if _, err := fmt.Fprint(w, prompt); err != nil {
			return "", err
		}
		pw, err := readPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(w)
		return string(pw), err
	}

	first, err := read("Password: ")
	if err != nil {
		return "", err
	}
	second, err := read("Password (again): ")
	if err != nil {
		return "", err
	}
	if first != second {
		return "", errors.New("passwords do not match")
	}
	return first, nil
}

type seedFile struct {
	Accounts []usecases.SeedAccount `yaml:"accounts"`
}

// parseSeedFile decodes a yaml document with a top-level accounts list.
func parseSeedFile(r io.Reader) ([]usecases.SeedAccount, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f seedFile
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	return f.Accounts, nil
}

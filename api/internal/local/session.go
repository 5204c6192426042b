package local

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"invoice-extractor/api/internal/invoice"
)

const DefaultOutputFile = "invoice_data.txt"

type Extractor interface {
	Extract(ctx context.Context, img invoice.Image) (invoice.Result, error)
}

type ModelLister interface {
	ListModels(ctx context.Context) ([]string, error)
}

// Prompter asks the user one question and returns the trimmed answer.
type Prompter interface {
	Prompt(label string) (string, error)
}

// Session is the interactive local front end. User-facing text goes to Out.
// When Output is set the interactive flow saves there without asking.
type Session struct {
	Ext    Extractor
	Out    io.Writer
	Output string
}

func NewSession(ext Extractor, out io.Writer) *Session {
	if out == nil {
		out = os.Stdout
	}
	return &Session{Ext: ext, Out: out}
}

// Process prints the path and raw model text, then returns the result.
func (s *Session) Process(ctx context.Context, imagePath string) (invoice.Result, error) {
	img, err := invoice.ImageFromFile(imagePath)
	if err != nil {
		return invoice.Result{}, err
	}
	fmt.Fprintf(s.Out, "Processing invoice: %s\n", imagePath)

	res, err := s.Ext.Extract(ctx, img)
	if res.Raw != "" {
		fmt.Fprintln(s.Out, "Raw Gemini response:")
		fmt.Fprintln(s.Out, res.Raw)
	}
	if err != nil {
		return invoice.Result{}, err
	}
	return res, nil
}

// Run checks the path, processes it and, when outputFile is set, saves the
// result there. Errors are printed to Out and also returned.
func (s *Session) Run(ctx context.Context, imagePath, outputFile string) (any, error) {
	if _, err := os.Stat(imagePath); errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(s.Out, "Error: Image file not found at %s\n", imagePath)
		return nil, err
	}
	res, err := s.Process(ctx, imagePath)
	if err != nil {
		fmt.Fprintf(s.Out, "Error processing invoice: %v\n", err)
		return nil, err
	}
	if outputFile != "" {
		if err := Save(outputFile, res); err != nil {
			fmt.Fprintf(s.Out, "Error saving output: %v\n", err)
			return res.Value, err
		}
		fmt.Fprintf(s.Out, "Saved output to %s\n", outputFile)
	}
	return res.Value, nil
}

// Interactive asks for the image path and the optional output file, then runs.
func (s *Session) Interactive(ctx context.Context, p Prompter) (any, error) {
	imagePath, err := p.Prompt("Enter the path to your invoice image: ")
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(imagePath); errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(s.Out, "Error: Image file not found at %s\n", imagePath)
		return nil, nil
	}

	outputFile := s.Output
	if outputFile == "" {
		outputFile, err = s.askOutputFile(p)
		if err != nil {
			return nil, err
		}
	}
	v, _ := s.Run(ctx, imagePath, outputFile)
	return v, nil
}

func (s *Session) askOutputFile(p Prompter) (string, error) {
	save, err := p.Prompt("Do you want to save output to a file? (y/n): ")
	if err != nil {
		return "", err
	}
	var outputFile string
	if strings.ToLower(save) == "y" {
		outputFile, err = p.Prompt("Enter output filename (e.g., invoice_data.json): ")
		if err != nil {
			return "", err
		}
		if outputFile == "" {
			outputFile = DefaultOutputFile
		}
	}
	return outputFile, nil
}

// ListModels prints the models that can serve generateContent.
func (s *Session) ListModels(ctx context.Context, l ModelLister) error {
	names, err := l.ListModels(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(s.Out, "Available models:")
	for _, n := range names {
		fmt.Fprintf(s.Out, "- %s\n", n)
	}
	fmt.Fprintln(s.Out)
	return nil
}

// Save writes the result as indented JSON, keys in the order the model gave them.
func Save(path string, res invoice.Result) error {
	b, err := res.JSON()
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, b, "", "  "); err != nil {
		return err
	}
	buf.WriteByte('\n')
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sandeepkv93/studyd/internal/config"
	"github.com/sandeepkv93/studyd/internal/model"
	"github.com/sandeepkv93/studyd/internal/storage"
	"github.com/sandeepkv93/studyd/internal/store"
	"github.com/sandeepkv93/studyd/internal/transfer"
)

const (
	ExitSuccess      = 0
	ExitFailure      = 1 // the command ran but the outcome is a failure (not found, dangling refs)
	ExitCommandError = 2 // bad arguments, config or storage setup
)

// Error codes carried in the JSON error envelope.
const (
	ErrCodeGeneric     = "E001"
	ErrCodeNotFound    = "E002"
	ErrCodeInvalid     = "E003"
	ErrCodePersistence = "E004"
	ErrCodeConfig      = "E005"
	ErrCodeDangling    = "E006"
)

type ExitError struct {
	Code    int
	ErrCode string
	Message string
	Err     error
	Details any
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func NewExitError(code int, errCode, message string) *ExitError {
	return &ExitError{Code: code, ErrCode: errCode, Message: message}
}

func WrapExitError(code int, errCode, message string, err error) *ExitError {
	return &ExitError{Code: code, ErrCode: errCode, Message: message, Err: err}
}

// classify maps an error to its exit code and envelope code.
func classify(err error) (int, string) {
	var exitErr *ExitError
	switch {
	case errors.As(err, &exitErr):
		code := exitErr.ErrCode
		if code == "" {
			code = ErrCodeGeneric
		}
		return exitErr.Code, code
	case errors.Is(err, store.ErrNotFound):
		return ExitFailure, ErrCodeNotFound
	case errors.Is(err, store.ErrPersistence):
		return ExitFailure, ErrCodePersistence
	case errors.Is(err, model.ErrInvalidStatus),
		errors.Is(err, model.ErrMissingField),
		errors.Is(err, store.ErrUnknownSubject),
		errors.Is(err, transfer.ErrInvalidDocument),
		errors.Is(err, transfer.ErrUnsupportedFormat):
		return ExitCommandError, ErrCodeInvalid
	case errors.Is(err, storage.ErrUnknownBackend),
		errors.Is(err, config.ErrInvalidConfig):
		return ExitCommandError, ErrCodeConfig
	default:
		return ExitFailure, ErrCodeGeneric
	}
}

func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	code, _ := classify(err)
	return code
}

// OutputFormatter writes command results as text or as the JSON envelope.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer
	Verbose   bool
}

type CLIResponse struct {
	Status string    `json:"status"`
	Data   any       `json:"data,omitempty"`
	Error  *CLIError `json:"error,omitempty"`
}

type CLIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Success emits data in JSON mode and text otherwise.
func (f *OutputFormatter) Success(data any, text string) error {
	if f.Format == "json" {
		return f.encode(CLIResponse{Status: "ok", Data: data})
	}
	if text == "" {
		return nil
	}
	_, err := fmt.Fprintln(f.Writer, strings.TrimRight(text, "\n"))
	return err
}

func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return f.encode(CLIResponse{
			Status: "error",
			Error:  &CLIError{Code: code, Message: message, Details: details},
		})
	}
	w := f.GetErrWriter()
	fmt.Fprintf(w, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(w, "Details: %v\n", details)
	}
	return nil
}

// VerboseLog goes to ErrWriter so JSON on Writer stays parseable.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}

func (f *OutputFormatter) encode(v any) error {
	enc := json.NewEncoder(f.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

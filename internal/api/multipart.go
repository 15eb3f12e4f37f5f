package api

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
)

// File is one upload part.
type File struct {
	Field   string
	Name    string
	Content io.Reader
}

// Form is a multipart body: plain fields first, then files.
type Form struct {
	fields [][2]string
	files  []File
}

func NewForm() *Form { return &Form{} }

func (f *Form) Set(name, value string) *Form {
	f.fields = append(f.fields, [2]string{name, value})
	return f
}

// SetIf adds the field only when value is not empty.
func (f *Form) SetIf(name, value string) *Form {
	if value == "" {
		return f
	}
	return f.Set(name, value)
}

func (f *Form) Attach(file File) *Form {
	f.files = append(f.files, file)
	return f
}

func (f *Form) encode() ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, kv := range f.fields {
		if err := w.WriteField(kv[0], kv[1]); err != nil {
			return nil, "", err
		}
	}
	for _, file := range f.files {
		part, err := w.CreateFormFile(file.Field, file.Name)
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(part, file.Content); err != nil {
			return nil, "", fmt.Errorf("copy %s: %w", file.Name, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}

	return buf.Bytes(), w.FormDataContentType(), nil
}

package http

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/textproto"
	"sort"
	"strings"

	"github.com/crmarques/cloudstore/server"
)

func encodeRequestBody(request server.Request) ([]byte, string, error) {
	switch {
	case request.IsMultipart() || len(request.Form) > 0:
		return encodeMultipartBody(request.Form, request.Files)
	case request.Raw != nil:
		contentType := strings.TrimSpace(request.RawContentType)
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		return request.Raw, contentType, nil
	case request.Body != nil:
		encoded, err := json.Marshal(request.Body)
		if err != nil {
			return nil, "", validationError("failed to encode JSON request body", err)
		}
		return encoded, defaultMediaType, nil
	default:
		return nil, "", nil
	}
}

func encodeMultipartBody(form map[string]string, files []server.FilePart) ([]byte, string, error) {
	var buffer bytes.Buffer
	writer := multipart.NewWriter(&buffer)

	keys := make([]string, 0, len(form))
	for key := range form {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if err := writer.WriteField(key, form[key]); err != nil {
			return nil, "", internalError("failed to encode multipart field", err)
		}
	}

	for _, file := range files {
		field := strings.TrimSpace(file.Field)
		if field == "" {
			field = "file"
		}

		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", multipartDisposition(field, file.FileName))
		contentType := strings.TrimSpace(file.ContentType)
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		header.Set("Content-Type", contentType)

		part, err := writer.CreatePart(header)
		if err != nil {
			return nil, "", internalError("failed to create multipart file part", err)
		}
		if file.Content != nil {
			if _, err := io.Copy(part, file.Content); err != nil {
				return nil, "", internalError("failed to write multipart file part", err)
			}
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", internalError("failed to finalize multipart body", err)
	}
	return buffer.Bytes(), writer.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func multipartDisposition(field string, fileName string) string {
	return `form-data; name="` + quoteEscaper.Replace(field) + `"; filename="` + quoteEscaper.Replace(fileName) + `"`
}

package media

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"
	"unicode/utf8"

	"media-store/internal/utils/platformerrors"
)

// DisabledPrefix is the reserved path segment holding payloads of disabled records.
const DisabledPrefix = "disabled"

// Column limits of media_records.
const (
	MaxNamespaceLength = 128
	MaxOwnerIDLength   = 128
	MaxFileNameLength  = 255
	MaxLabelLength     = 255
)

// SanitizeFileName strips directory components from a client supplied file name.
func SanitizeFileName(fileName string) string {
	name := strings.TrimSpace(strings.ReplaceAll(fileName, "\\", "/"))
	if name == "" {
		return ""
	}
	base := path.Base(name)
	if base == "." || base == "/" {
		return ""
	}
	return base
}

// BuildKey returns the deterministic object key for a file inside a namespace.
func BuildKey(namespace, fileName string) (string, error) {
	ns := strings.TrimSpace(namespace)
	if err := ValidateNamespace(ns); err != nil {
		return "", err
	}

	name := SanitizeFileName(fileName)
	if name == "" {
		return "", invalidInput("file name is required", "e995cff6-b783-43f9-bbf9-51490ef81bc3")
	}
	if utf8.RuneCountInString(name) > MaxFileNameLength {
		return "", invalidInput(fmt.Sprintf("file name exceeds %d characters", MaxFileNameLength), "0c8f5b7e-2a41-4d3e-9f6a-8b1c2d3e4f50")
	}
	dot := strings.LastIndex(name, ".")
	if dot <= 0 || dot == len(name)-1 {
		return "", invalidInput("file name must have a name and an extension", "1bf37237-d91c-4da5-9b25-86cad59d8e45")
	}

	return ns + "/" + name, nil
}

// DisabledKey returns the key a payload is moved to when its record is disabled.
func DisabledKey(objectKey string) string {
	return DisabledPrefix + "/" + strings.TrimPrefix(objectKey, "/")
}

// ArchiveKey returns where an update keeps the payload it replaces. The record id and
// timestamp suffix never ends in a classified extension, so it cannot collide with a
// DisabledKey path or with an earlier archive of the same key.
func ArchiveKey(objectKey, recordID string, at time.Time) string {
	return fmt.Sprintf("%s.%s-%d", DisabledKey(objectKey), recordID, at.UnixNano())
}

// OrphanKey returns where the reconciler moves an object that no active record references.
func OrphanKey(objectKey string, at time.Time) string {
	return fmt.Sprintf("%s.orphan-%d", DisabledKey(objectKey), at.UnixNano())
}

// ValidateNamespace checks that a namespace can be used as an object key prefix.
func ValidateNamespace(namespace string) error {
	switch {
	case strings.TrimSpace(namespace) == "":
		return invalidInput("namespace is required", "62d36dd4-34e0-458a-9eba-a0fac4232e2d")
	case strings.ContainsAny(namespace, "/\\"):
		return invalidInput("namespace must not contain path separators", "8d8e9d03-a6f8-4832-b469-70a12fae6aac")
	case strings.EqualFold(namespace, DisabledPrefix):
		return invalidInput("namespace \"disabled\" is reserved", "f9f9baed-d35e-45b2-a882-371d31246f0e")
	case utf8.RuneCountInString(namespace) > MaxNamespaceLength:
		return invalidInput(fmt.Sprintf("namespace exceeds %d characters", MaxNamespaceLength), "b7e2c4d1-6f3a-4e8b-9c0d-1a2b3c4d5e6f")
	}
	return nil
}

// ValidateLength rejects a field longer than limit characters.
func ValidateLength(field, value string, limit int) error {
	if utf8.RuneCountInString(value) > limit {
		return invalidInput(fmt.Sprintf("%s exceeds %d characters", field, limit), "4e1d7a9c-3b5f-4c2e-8a6d-9f0b1c2d3e4a")
	}
	return nil
}

func invalidInput(message, uuid string) error {
	return platformerrors.NewError(context.Background(), platformerrors.LayerDomain, platformerrors.ErrorTypeInvalidInput, message, nil, uuid)
}

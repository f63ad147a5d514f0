package media

import (
	"context"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"media-store/internal/utils/platformerrors"
)

type extensionInfo struct {
	kind        Kind
	contentType string
}

// Every accepted extension must be listed here; anything else is rejected.
var extensionTable = map[string]extensionInfo{
	"jpg":  {KindImage, "image/jpeg"},
	"jpeg": {KindImage, "image/jpeg"},
	"png":  {KindImage, "image/png"},
	"gif":  {KindImage, "image/gif"},
	"webp": {KindImage, "image/webp"},
	"mp4":  {KindVideo, "video/mp4"},
	"webm": {KindVideo, "video/webm"},
	"mp3":  {KindAudio, "audio/mpeg"},
	"wav":  {KindAudio, "audio/wav"},
	"ogg":  {KindAudio, "audio/ogg"},
}

// Classify maps a file name to its media kind using the extension after the last dot.
func Classify(fileName string) (Kind, error) {
	info, err := lookupExtension(fileName)
	if err != nil {
		return "", err
	}
	return info.kind, nil
}

// ContentTypeFor returns the canonical MIME type for the file name's extension.
func ContentTypeFor(fileName string) (string, error) {
	info, err := lookupExtension(fileName)
	if err != nil {
		return "", err
	}
	return info.contentType, nil
}

func lookupExtension(fileName string) (extensionInfo, error) {
	dot := strings.LastIndex(fileName, ".")
	if dot < 0 || dot == len(fileName)-1 {
		return extensionInfo{}, platformerrors.NewError(
			context.Background(),
			platformerrors.LayerDomain,
			platformerrors.ErrorTypeUnsupportedMediaKind,
			fmt.Sprintf("file %q has no extension", fileName),
			nil,
			"e9fcc13c-d613-4faf-b089-d4e94d950bb5",
		)
	}
	ext := strings.ToLower(fileName[dot+1:])
	info, ok := extensionTable[ext]
	if !ok {
		return extensionInfo{}, platformerrors.NewError(
			context.Background(),
			platformerrors.LayerDomain,
			platformerrors.ErrorTypeUnsupportedMediaKind,
			fmt.Sprintf("unsupported media extension %q", ext),
			nil,
			"29b7bf45-d927-486c-a031-7107e9581d47",
		)
	}
	return info, nil
}

// refineContentType prefers the sniffed type when it agrees with the classified kind.
func refineContentType(kind Kind, declared string, head []byte) string {
	if len(head) == 0 {
		return declared
	}
	detected := mimetype.Detect(head)
	for m := detected; m != nil; m = m.Parent() {
		if kindOfMIME(m.String()) == kind {
			return m.String()
		}
	}
	return declared
}

func kindOfMIME(mime string) Kind {
	switch {
	case strings.HasPrefix(mime, "image/"):
		return KindImage
	case strings.HasPrefix(mime, "video/"):
		return KindVideo
	case strings.HasPrefix(mime, "audio/"):
		return KindAudio
	}
	return ""
}

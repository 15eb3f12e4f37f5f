package bot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"

	"github.com/areahoodnigeria/client-app-sub001/internal/api"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// maxPhotoBytes matches Telegram's download limit for bots.
const maxPhotoBytes = 20 << 20

// downloadPhoto fetches the largest size of a Telegram photo.
func (b *Bot) downloadPhoto(ctx context.Context, sizes []tgbotapi.PhotoSize) (api.File, error) {
	if len(sizes) == 0 {
		return api.File{}, errors.New("no photo sizes")
	}
	return b.download(ctx, sizes[len(sizes)-1].FileID)
}

func (b *Bot) download(ctx context.Context, fileID string) (api.File, error) {
	link, err := b.tg.GetFileDirectURL(fileID)
	if err != nil {
		return api.File{}, fmt.Errorf("resolve file %s: %w", fileID, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return api.File{}, err
	}
	resp, err := b.http.Do(req)
	if err != nil {
		return api.File{}, fmt.Errorf("download file %s: %w", fileID, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return api.File{}, fmt.Errorf("download file %s: status %d", fileID, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPhotoBytes+1))
	if err != nil {
		return api.File{}, fmt.Errorf("read file %s: %w", fileID, err)
	}
	if len(data) > maxPhotoBytes {
		return api.File{}, fmt.Errorf("file %s is too large", fileID)
	}

	name := path.Base(link)
	if name == "" || name == "." || name == "/" {
		name = fileID + ".jpg"
	}
	return api.File{Name: name, Content: bytes.NewReader(data)}, nil
}

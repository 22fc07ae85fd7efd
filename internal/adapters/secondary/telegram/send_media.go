package telegram

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"

	"encoding/json"
	"io"

	"github.com/admin/tg-bots/pack-store-bot/internal/domain"
)

// SendPhotoByURL отправляет фото по внешней ссылке (Telegram скачивает сам).
// Telegram отвечает ошибкой "wrong type of the web page content", если по
// ссылке не картинка - тогда вызывающая сторона уходит в fallback на байты.
func (c *Client) SendPhotoByURL(ctx context.Context, chatID int64, photoURL, caption string, keyboard *domain.InlineKeyboard) error {
	reqBody := map[string]interface{}{
		"chat_id": chatID,
		"photo":   photoURL,
	}
	if caption != "" {
		reqBody["caption"] = caption
		reqBody["parse_mode"] = "HTML"
	}
	if keyboard != nil {
		reqBody["reply_markup"] = keyboard
	}

	if _, err := c.postJSON(ctx, "sendPhoto", reqBody); err != nil {
		return err
	}

	c.log.Debug("photo sent by url", "chat_id", chatID)
	return nil
}

// SendVideoByURL отправляет видео по внешней ссылке
func (c *Client) SendVideoByURL(ctx context.Context, chatID int64, videoURL, caption string) error {
	reqBody := map[string]interface{}{
		"chat_id": chatID,
		"video":   videoURL,
	}
	if caption != "" {
		reqBody["caption"] = caption
		reqBody["parse_mode"] = "HTML"
	}

	if _, err := c.postJSON(ctx, "sendVideo", reqBody); err != nil {
		return err
	}

	c.log.Debug("video sent by url", "chat_id", chatID)
	return nil
}

// SendPhoto отправляет байты фото напрямую (multipart/form-data)
func (c *Client) SendPhoto(ctx context.Context, chatID int64, data []byte, filename, caption string) error {
	return c.sendFile(ctx, "sendPhoto", "photo", chatID, data, filename, caption)
}

// SendDocument отправляет произвольный файл (архив пака)
func (c *Client) SendDocument(ctx context.Context, chatID int64, data []byte, filename, caption string) error {
	return c.sendFile(ctx, "sendDocument", "document", chatID, data, filename, caption)
}

// sendFile выполняет multipart-запрос с файлом к указанному методу Bot API
func (c *Client) sendFile(ctx context.Context, method, field string, chatID int64, data []byte, filename, caption string) error {
	var requestBody bytes.Buffer
	writer := multipart.NewWriter(&requestBody)

	if err := writer.WriteField("chat_id", fmt.Sprintf("%d", chatID)); err != nil {
		return fmt.Errorf("failed to write chat_id: %w", err)
	}

	if caption != "" {
		if err := writer.WriteField("caption", caption); err != nil {
			return fmt.Errorf("failed to write caption: %w", err)
		}
		if err := writer.WriteField("parse_mode", "HTML"); err != nil {
			return fmt.Errorf("failed to write parse_mode: %w", err)
		}
	}

	filePart, err := writer.CreateFormFile(field, filename)
	if err != nil {
		return fmt.Errorf("failed to create form file: %w", err)
	}

	if _, err := filePart.Write(data); err != nil {
		return fmt.Errorf("failed to write file data: %w", err)
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close multipart writer: %w", err)
	}

	url := c.baseURL + "/" + method
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &requestBody)
	if err != nil {
		return fmt.Errorf("telegram create request failed [chat_id=%d]: %w", chatID, err)
	}

	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	c.log.Debug("uploading file to Telegram",
		"method", method,
		"chat_id", chatID,
		"filename", filename,
		"size", len(data),
	)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("telegram request failed [chat_id=%d]: %w", chatID, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("telegram read response failed [chat_id=%d, status=%d]: %w",
			chatID, resp.StatusCode, err)
	}

	var apiResp APIResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		c.log.Error("failed to unmarshal response",
			"error", err,
			"method", method,
			"chat_id", chatID,
			"status_code", resp.StatusCode,
			"body_preview", truncateString(string(body), 200),
		)
		return fmt.Errorf("telegram unmarshal failed [chat_id=%d, status=%d]: %w",
			chatID, resp.StatusCode, err)
	}

	if !apiResp.OK {
		return fmt.Errorf("telegram API error [method=%s, code=%d, chat_id=%d]: %s",
			method, apiResp.ErrorCode, chatID, apiResp.Description)
	}

	c.log.Debug("file uploaded successfully",
		"method", method,
		"chat_id", chatID,
		"filename", filename,
	)

	return nil
}

package telegram

import "context"

// SetWebhook устанавливает webhook для получения обновлений.
// secretToken возвращается Telegram'ом в заголовке X-Telegram-Bot-Api-Secret-Token.
func (c *Client) SetWebhook(ctx context.Context, webhookURL, secretToken string) error {
	reqBody := map[string]interface{}{
		"url": webhookURL,
	}
	if secretToken != "" {
		reqBody["secret_token"] = secretToken
	}

	if _, err := c.postJSON(ctx, "setWebhook", reqBody); err != nil {
		return err
	}

	c.log.Info("webhook set successfully", "webhook_url", webhookURL)
	return nil
}

// DeleteWebhook удаляет webhook (перед запуском polling)
func (c *Client) DeleteWebhook(ctx context.Context) error {
	reqBody := map[string]interface{}{
		"drop_pending_updates": false,
	}

	if _, err := c.postJSON(ctx, "deleteWebhook", reqBody); err != nil {
		return err
	}

	c.log.Info("webhook deleted successfully")
	return nil
}

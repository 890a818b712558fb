package upstream

import (
	"context"
	"encoding/json"
	"fmt"
)

// SendCode asks the session service to deliver a login code to phone
func (c *Client) SendCode(ctx context.Context, phone, operatorID string) (*SendCodeResult, error) {
	body, err := c.Call(ctx, EndpointSendCode, sendCodeRequest{
		Phone:    phone,
		Operator: operatorID,
		Account:  phone,
	}, 0)
	if err != nil {
		return nil, err
	}

	var result SendCodeResult
	if err := decode(body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// VerifyCode submits the code received by phone
func (c *Client) VerifyCode(ctx context.Context, phone, code, codeHash, operatorID string) (*VerifyCodeResult, error) {
	body, err := c.Call(ctx, EndpointVerifyCode, verifyCodeRequest{
		Phone:         phone,
		Code:          code,
		PhoneCodeHash: codeHash,
		Operator:      operatorID,
		Account:       phone,
	}, 0)
	if err != nil {
		return nil, err
	}

	var result VerifyCodeResult
	if err := decode(body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// VerifyPassword submits the two-factor password of phone
func (c *Client) VerifyPassword(ctx context.Context, phone, password, operatorID string) (*VerifyPasswordResult, error) {
	body, err := c.Call(ctx, EndpointVerifyPassword, verifyPasswordRequest{
		Phone:    phone,
		Password: password,
		Operator: operatorID,
		Account:  phone,
	}, 0)
	if err != nil {
		return nil, err
	}

	var result VerifyPasswordResult
	if err := decode(body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Logout terminates the upstream session of phone
func (c *Client) Logout(ctx context.Context, phone, operatorID string) error {
	_, err := c.Call(ctx, EndpointLogout, accountRequest{Operator: operatorID, Account: phone}, 0)
	return err
}

// ListConversations returns the raw chats visible to the account phone
func (c *Client) ListConversations(ctx context.Context, operatorID, phone string) ([]RawChat, error) {
	body, err := c.Call(ctx, EndpointChats, accountRequest{Operator: operatorID, Account: phone}, 0)
	if err != nil {
		return nil, err
	}

	var result chatsResponse
	if err := decode(body, &result); err != nil {
		return nil, err
	}
	return result.Chats, nil
}

// ListMessages returns up to limit raw messages of chatID as seen by the account phone
func (c *Client) ListMessages(ctx context.Context, operatorID, phone, chatID string, limit int) (*MessagesResult, error) {
	body, err := c.Call(ctx, EndpointChatMessages, chatMessagesRequest{
		Operator: operatorID,
		Account:  phone,
		ChatID:   chatID,
		Limit:    limit,
	}, 0)
	if err != nil {
		return nil, err
	}

	var result MessagesResult
	if err := decode(body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func decode(body []byte, dst interface{}) error {
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("failed to decode session service response: %w", err)
	}
	return nil
}

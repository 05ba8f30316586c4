package notifications

import (
	"context"
	"encoding/json"
	"log"

	"github.com/you/cyberportal/domain"
)

const flashKey = "flash"

// FlashService implements domain.Notifier by queueing notices in the
// visitor's durable storage, so a notice queued during a redirecting
// operation is still available on the next render. Storage trouble is
// logged and swallowed: losing a toast must never fail an operation.
type FlashService struct {
	storage domain.SessionStorage
}

// NewFlashService creates a notifier bound to one visitor's storage.
func NewFlashService(storage domain.SessionStorage) *FlashService {
	return &FlashService{storage: storage}
}

// Success implements domain.Notifier
func (f *FlashService) Success(ctx context.Context, message string) {
	f.push(ctx, domain.Flash{Level: domain.FlashSuccess, Message: message})
}

// Error implements domain.Notifier
func (f *FlashService) Error(ctx context.Context, message string) {
	f.push(ctx, domain.Flash{Level: domain.FlashError, Message: message})
}

// Info implements domain.Notifier
func (f *FlashService) Info(ctx context.Context, message string) {
	f.push(ctx, domain.Flash{Level: domain.FlashInfo, Message: message})
}

// Drain implements domain.Notifier
func (f *FlashService) Drain(ctx context.Context) []domain.Flash {
	queued := f.load(ctx)
	if len(queued) == 0 {
		return nil
	}
	if err := f.storage.Delete(ctx, flashKey); err != nil {
		log.Printf("FLASH_DRAIN_FAILED: error=%v", err)
	}
	return queued
}

func (f *FlashService) push(ctx context.Context, flash domain.Flash) {
	queued := append(f.load(ctx), flash)
	data, err := json.Marshal(queued)
	if err != nil {
		log.Printf("FLASH_ENCODE_FAILED: error=%v", err)
		return
	}
	if err := f.storage.Set(ctx, flashKey, string(data)); err != nil {
		log.Printf("FLASH_STORE_FAILED: error=%v", err)
	}
}

func (f *FlashService) load(ctx context.Context) []domain.Flash {
	raw, err := f.storage.Get(ctx, flashKey)
	if err != nil || raw == "" {
		return nil
	}
	var queued []domain.Flash
	if err := json.Unmarshal([]byte(raw), &queued); err != nil {
		return nil
	}
	return queued
}

var _ domain.Notifier = (*FlashService)(nil)

// Package uploader manages product image uploads: a local queue of files
// waiting to go up, the confirmed server-side image list, and reordering
// with rollback when the backend rejects the new order.
package uploader

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/google/uuid"

	"github.com/crmarques/storectl/api"
	"github.com/crmarques/storectl/faults"
	"github.com/crmarques/storectl/resource"
	"github.com/crmarques/storectl/storefront"
)

// Client is the slice of the REST client the queue needs.
type Client interface {
	Get(ctx context.Context, path string, opts *api.RequestOptions) (resource.Value, error)
	Post(ctx context.Context, path string, body any, opts *api.RequestOptions) (resource.Value, error)
	Delete(ctx context.Context, path string) error
	Upload(
		ctx context.Context,
		path string,
		filename string,
		contents io.Reader,
		fields map[string]string,
		opts *api.RequestOptions,
	) (resource.Value, error)
}

// Notifier receives user-facing status messages.
type Notifier interface {
	Success(message string) string
	Error(message string) string
	Info(message string) string
}

// Item is one file waiting to be uploaded. A failed upload keeps the item
// queued with Err set so it can be retried.
type Item struct {
	ID      string
	Name    string
	AltText string
	Err     error

	contents []byte
}

// Queue tracks pending files and confirmed images for one product. Items
// can be queued before the product exists; uploads start once a target is
// set.
type Queue struct {
	client   Client
	notifier Notifier

	mutex     sync.Mutex
	shopID    string
	productID string
	pending   []*Item
	confirmed []storefront.Image
	uploading map[string]bool
}

type QueueOption func(*Queue)

func WithNotifier(notifier Notifier) QueueOption {
	return func(q *Queue) { q.notifier = notifier }
}

// WithTarget binds the queue to an existing product.
func WithTarget(shopID string, productID string) QueueOption {
	return func(q *Queue) {
		q.shopID = shopID
		q.productID = productID
	}
}

func NewQueue(client Client, opts ...QueueOption) *Queue {
	queue := &Queue{
		client:    client,
		uploading: make(map[string]bool),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(queue)
		}
	}
	return queue
}

// SetTarget binds a queue created before the product existed. Queued items
// stay pending until Upload is called.
func (q *Queue) SetTarget(shopID string, productID string) {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	q.shopID = shopID
	q.productID = productID
}

// Add queues a file and returns the item identifier. The contents are read
// fully up front so a retry does not depend on the caller's reader.
func (q *Queue) Add(name string, contents io.Reader, altText string) (string, error) {
	if contents == nil {
		return "", faults.NewTypedError(faults.ValidationError, "image contents are required", nil)
	}
	data, err := io.ReadAll(contents)
	if err != nil {
		return "", faults.NewTypedError(faults.ValidationError, "failed to read image contents", err)
	}
	if len(data) == 0 {
		return "", faults.NewTypedError(faults.ValidationError, "image file is empty", nil)
	}

	item := &Item{
		ID:       uuid.NewString(),
		Name:     name,
		AltText:  altText,
		contents: data,
	}

	q.mutex.Lock()
	q.pending = append(q.pending, item)
	q.mutex.Unlock()
	return item.ID, nil
}

// Pending returns a snapshot of the queued items in arrival order.
func (q *Queue) Pending() []Item {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	snapshot := make([]Item, 0, len(q.pending))
	for _, item := range q.pending {
		snapshot = append(snapshot, *item)
	}
	return snapshot
}

// Images returns a snapshot of the confirmed server images in their current
// order.
func (q *Queue) Images() []storefront.Image {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	snapshot := make([]storefront.Image, len(q.confirmed))
	copy(snapshot, q.confirmed)
	return snapshot
}

// Load replaces the confirmed list with the server's.
func (q *Queue) Load(ctx context.Context) error {
	path, err := q.imagesPath()
	if err != nil {
		return err
	}

	value, err := q.client.Get(ctx, path, nil)
	if err != nil {
		return err
	}
	images, err := storefront.DecodeImages(value)
	if err != nil {
		return err
	}

	q.mutex.Lock()
	q.confirmed = images
	q.mutex.Unlock()
	return nil
}

// Upload sends every queued item concurrently. Each success promotes the
// item to the confirmed list; each failure keeps the item queued with its
// error recorded. The first error is returned after all uploads finish.
func (q *Queue) Upload(ctx context.Context) error {
	uploadPath, err := q.uploadPath()
	if err != nil {
		notifyError(q.notifier, err)
		return err
	}

	items := q.takeUploadable()
	if len(items) == 0 {
		return nil
	}

	var waitGroup sync.WaitGroup
	errs := make([]error, len(items))
	for index, item := range items {
		waitGroup.Add(1)
		go func(index int, item *Item) {
			defer waitGroup.Done()
			errs[index] = q.uploadOne(ctx, uploadPath, item)
		}(index, item)
	}
	waitGroup.Wait()

	var firstErr error
	failed := 0
	for _, err := range errs {
		if err != nil {
			failed++
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	if failed == 0 {
		notifySuccess(q.notifier, "Images uploaded")
	} else {
		notifyError(q.notifier, firstErr)
	}
	return firstErr
}

func (q *Queue) uploadOne(ctx context.Context, uploadPath string, item *Item) error {
	fields := map[string]string{}
	if item.AltText != "" {
		fields["alt_text"] = item.AltText
	}

	value, err := q.client.Upload(ctx, uploadPath, item.Name, bytes.NewReader(item.contents), fields, nil)

	q.mutex.Lock()
	defer q.mutex.Unlock()
	delete(q.uploading, item.ID)

	if err != nil {
		item.Err = err
		return err
	}

	image, err := storefront.DecodeImage(value)
	if err != nil {
		item.Err = err
		return err
	}

	q.confirmed = append(q.confirmed, image)
	q.removePendingLocked(item.ID)
	return nil
}

// Remove drops a queued item that has not been uploaded.
func (q *Queue) Remove(itemID string) {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	if q.uploading[itemID] {
		return
	}
	q.removePendingLocked(itemID)
}

// Move shifts a confirmed image from one position to another locally. The
// new order reaches the backend on the next PersistOrder.
func (q *Queue) Move(from int, to int) error {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	if from < 0 || from >= len(q.confirmed) || to < 0 || to >= len(q.confirmed) {
		return faults.NewTypedError(faults.ValidationError, "image position is out of range", nil)
	}
	if from == to {
		return nil
	}

	image := q.confirmed[from]
	q.confirmed = append(q.confirmed[:from], q.confirmed[from+1:]...)
	rest := append([]storefront.Image{}, q.confirmed[to:]...)
	q.confirmed = append(append(q.confirmed[:to:to], image), rest...)
	return nil
}

// PersistOrder sends the current image order to the backend. When the
// backend rejects it the previous order is restored so the local list never
// drifts from the server's.
func (q *Queue) PersistOrder(ctx context.Context) error {
	path, err := q.reorderPath()
	if err != nil {
		notifyError(q.notifier, err)
		return err
	}

	q.mutex.Lock()
	previous := make([]storefront.Image, len(q.confirmed))
	copy(previous, q.confirmed)
	order := make([]string, len(q.confirmed))
	for index, image := range q.confirmed {
		order[index] = image.ID
	}
	q.mutex.Unlock()

	value, err := q.client.Post(ctx, path, map[string]any{"order": order}, nil)
	if err != nil {
		q.mutex.Lock()
		q.confirmed = previous
		q.mutex.Unlock()
		notifyError(q.notifier, err)
		return err
	}

	if images, decodeErr := storefront.DecodeImages(value); decodeErr == nil && images != nil {
		q.mutex.Lock()
		q.confirmed = images
		q.mutex.Unlock()
	} else {
		q.mutex.Lock()
		for index := range q.confirmed {
			q.confirmed[index].SortOrder = int64(index)
		}
		q.mutex.Unlock()
	}

	notifySuccess(q.notifier, "Image order saved")
	return nil
}

// DeleteImage removes a confirmed image. The local list only changes after
// the backend confirms the delete.
func (q *Queue) DeleteImage(ctx context.Context, imageID string) error {
	q.mutex.Lock()
	shopID, productID := q.shopID, q.productID
	q.mutex.Unlock()
	if shopID == "" || productID == "" {
		err := missingTargetError()
		notifyError(q.notifier, err)
		return err
	}

	if err := q.client.Delete(ctx, storefront.ProductImagePath(shopID, productID, imageID)); err != nil {
		notifyError(q.notifier, err)
		return err
	}

	q.mutex.Lock()
	for index, image := range q.confirmed {
		if image.ID == imageID {
			q.confirmed = append(q.confirmed[:index], q.confirmed[index+1:]...)
			break
		}
	}
	q.mutex.Unlock()

	notifySuccess(q.notifier, "Image deleted")
	return nil
}

func (q *Queue) takeUploadable() []*Item {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	items := make([]*Item, 0, len(q.pending))
	for _, item := range q.pending {
		if q.uploading[item.ID] {
			continue
		}
		q.uploading[item.ID] = true
		item.Err = nil
		items = append(items, item)
	}
	return items
}

func (q *Queue) removePendingLocked(itemID string) {
	for index, item := range q.pending {
		if item.ID == itemID {
			q.pending = append(q.pending[:index], q.pending[index+1:]...)
			return
		}
	}
}

func (q *Queue) uploadPath() (string, error) {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	if q.shopID == "" || q.productID == "" {
		return "", missingTargetError()
	}
	return storefront.ProductImageUploadPath(q.shopID, q.productID), nil
}

func (q *Queue) imagesPath() (string, error) {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	if q.shopID == "" || q.productID == "" {
		return "", missingTargetError()
	}
	return storefront.ProductImagesPath(q.shopID, q.productID), nil
}

func (q *Queue) reorderPath() (string, error) {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	if q.shopID == "" || q.productID == "" {
		return "", missingTargetError()
	}
	return storefront.ProductImageReorderPath(q.shopID, q.productID), nil
}

func missingTargetError() error {
	return faults.NewTypedError(
		faults.ValidationError,
		"save the product before working with its images",
		nil,
	)
}

func notifySuccess(notifier Notifier, message string) {
	if notifier != nil {
		notifier.Success(message)
	}
}

func notifyError(notifier Notifier, err error) {
	if notifier != nil {
		notifier.Error(faults.UserMessage(err))
	}
}

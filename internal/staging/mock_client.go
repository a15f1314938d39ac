package staging

import (
	"context"
	"fmt"
	"io"
	"sync"

	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// MockS3Client is a simple in-memory mock implementation of ObjectsAPI and
// PresignAPI for testing. It stores object bodies by key and supports error
// injection and call tracking.
type MockS3Client struct {
	mu sync.RWMutex

	// Objects maps object key -> stored body bytes
	Objects map[string][]byte
	// ContentTypes maps object key -> content type passed on PutObject
	ContentTypes map[string]string

	// Error injection for testing error scenarios
	PutObjectError    error
	DeleteObjectError error
	PresignError      error

	// Call tracking for test assertions
	PutObjectCalls    int
	DeleteObjectCalls int
	PresignCalls      int
}

// NewMockS3Client creates a new mock S3 client for testing.
func NewMockS3Client() *MockS3Client {
	return &MockS3Client{
		Objects:      make(map[string][]byte),
		ContentTypes: make(map[string]string),
	}
}

// PutObject stores the object body in memory.
func (m *MockS3Client) PutObject(
	_ context.Context,
	params *s3.PutObjectInput,
	_ ...func(*s3.Options),
) (*s3.PutObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.PutObjectCalls++

	if m.PutObjectError != nil {
		return nil, m.PutObjectError
	}

	data, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read object body: %w", err)
	}

	m.Objects[*params.Key] = data
	if params.ContentType != nil {
		m.ContentTypes[*params.Key] = *params.ContentType
	}

	return &s3.PutObjectOutput{}, nil
}

// DeleteObject removes the object from memory.
func (m *MockS3Client) DeleteObject(
	_ context.Context,
	params *s3.DeleteObjectInput,
	_ ...func(*s3.Options),
) (*s3.DeleteObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.DeleteObjectCalls++

	if m.DeleteObjectError != nil {
		return nil, m.DeleteObjectError
	}

	delete(m.Objects, *params.Key)
	return &s3.DeleteObjectOutput{}, nil
}

// PresignGetObject returns a synthetic presigned URL for the object.
func (m *MockS3Client) PresignGetObject(
	_ context.Context,
	params *s3.GetObjectInput,
	optFns ...func(*s3.PresignOptions),
) (*v4.PresignedHTTPRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.PresignCalls++

	if m.PresignError != nil {
		return nil, m.PresignError
	}

	opts := s3.PresignOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}

	presignedURL := fmt.Sprintf("https://%s.s3.amazonaws.com/%s?X-Amz-Expires=%d",
		*params.Bucket,
		*params.Key,
		int(opts.Expires.Seconds()))

	return &v4.PresignedHTTPRequest{
		URL:    presignedURL,
		Method: "GET",
	}, nil
}

// ObjectCount returns how many objects are currently stored.
func (m *MockS3Client) ObjectCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.Objects)
}

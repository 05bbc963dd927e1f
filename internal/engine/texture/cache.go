package texture

import "fmt"

// Uploader creates and destroys GPU textures. Implemented by the gpu package.
type Uploader interface {
	UploadTexture(img *Image) (uint32, error)
	DeleteTexture(id uint32)
}

// Texture is a GPU texture shared by every mesh that references the same key.
type Texture struct {
	Key    string
	ID     uint32
	Width  int
	Height int
	refs   int
}

// Refs returns the number of live references.
func (t *Texture) Refs() int { return t.refs }

// Cache dedupes uploads by key and reference-counts the results.
// It is not safe for concurrent use; only the render thread touches it.
type Cache struct {
	textures map[string]*Texture
}

// NewCache creates an empty texture cache.
func NewCache() *Cache {
	return &Cache{textures: make(map[string]*Texture)}
}

// Acquire returns the texture for img.Key, uploading it on first use.
func (c *Cache) Acquire(img *Image, up Uploader) (*Texture, error) {
	if t, ok := c.textures[img.Key]; ok {
		t.refs++
		return t, nil
	}

	id, err := up.UploadTexture(img)
	if err != nil {
		return nil, fmt.Errorf("uploading %s: %w", img.Key, err)
	}

	t := &Texture{
		Key:    img.Key,
		ID:     id,
		Width:  img.Width(),
		Height: img.Height(),
		refs:   1,
	}
	c.textures[img.Key] = t
	return t, nil
}

// Release drops one reference and deletes the GPU texture with the last one.
func (c *Cache) Release(t *Texture, up Uploader) {
	if t == nil || t.refs == 0 {
		return
	}
	t.refs--
	if t.refs > 0 {
		return
	}
	delete(c.textures, t.Key)
	if up != nil && t.ID != 0 {
		up.DeleteTexture(t.ID)
	}
	t.ID = 0
}

// Len returns the number of distinct textures resident on the GPU.
func (c *Cache) Len() int {
	return len(c.textures)
}

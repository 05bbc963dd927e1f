package gpu

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/stagecraft/internal/engine/texture"
)

// CubemapFaces is the number of images a skybox needs.
const CubemapFaces = 6

// UploadTexture creates a mipmapped 2D texture from img.
func (r *Renderer) UploadTexture(img *texture.Image) (uint32, error) {
	if img == nil || img.RGBA == nil || len(img.RGBA.Pix) == 0 {
		return 0, fmt.Errorf("texture %q has no pixels", keyOf(img))
	}

	var texID uint32
	gl.GenTextures(1, &texID)
	gl.BindTexture(gl.TEXTURE_2D, texID)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(img.Width()), int32(img.Height()), 0, gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&img.RGBA.Pix[0]))
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.TexParameterf(gl.TEXTURE_2D, gl.TEXTURE_MAX_ANISOTROPY, 8.0)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return texID, nil
}

// UploadCubemap creates a cube map from six faces ordered +X, -X, +Y, -Y, +Z, -Z.
func (r *Renderer) UploadCubemap(faces []*texture.Image) (uint32, error) {
	if len(faces) != CubemapFaces {
		return 0, fmt.Errorf("cubemap needs %d faces, got %d", CubemapFaces, len(faces))
	}
	for _, f := range faces {
		if f == nil || f.RGBA == nil || len(f.RGBA.Pix) == 0 {
			return 0, fmt.Errorf("cubemap face %q has no pixels", keyOf(f))
		}
	}

	var texID uint32
	gl.GenTextures(1, &texID)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, texID)
	for i, f := range faces {
		gl.TexImage2D(gl.TEXTURE_CUBE_MAP_POSITIVE_X+uint32(i), 0, gl.RGBA, int32(f.Width()), int32(f.Height()), 0, gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&f.RGBA.Pix[0]))
	}
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_R, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, 0)
	return texID, nil
}

// DeleteTexture frees a 2D or cube map texture.
func (r *Renderer) DeleteTexture(id uint32) {
	if id != 0 {
		gl.DeleteTextures(1, &id)
	}
}

func keyOf(img *texture.Image) string {
	if img == nil {
		return ""
	}
	return img.Key
}

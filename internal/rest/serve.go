// Copyright (C) 2020 Markus L. Noga
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package rest

import (
	"encoding/json"
	"fmt"
	"image/png"
	"io"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/mlnoga/dssim/internal/dssim"
	"github.com/mlnoga/dssim/internal/dssimjob"
	"github.com/mlnoga/dssim/internal/heatmap"
	"github.com/mlnoga/dssim/internal/imageio"
	"github.com/mlnoga/dssim/internal/stats"
	"github.com/mlnoga/dssim/web"
)

// Serve runs the REST API and static file server on the given port.
func Serve(port int) {
	r := gin.Default()
	r.GET("/", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", web.IndexHTML)
	})
	api := r.Group("/api")
	{
		v1 := api.Group("/v1")
		{
			v1.GET("/ping", getPing)
			v1.POST("/compare", postCompare)
			v1.POST("/compare/heatmap", postCompareHeatmap)
		}
	}
	r.Run(fmt.Sprintf(":%d", port))
}

func getPing(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "pong",
	})
}

// postCompare accepts a multipart form with two image files ("original",
// "modified") and an optional "spec" JSON field matching dssimjob.Spec, and
// returns a JSON body with the DSSIM value; when spec.WantMap is set it also
// carries summary statistics of the per-pixel dissimilarity map and the map
// dimensions. No image data is returned here; the heatmap PNG comes from
// postCompareHeatmap.
func postCompare(c *gin.Context) {
	spec, original, modified, attr, width, height, err := loadComparePair(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer attr.Dealloc()
	defer original.Release()
	defer modified.Release()

	value, ssimMap := dssim.Compare(attr, original, modified, spec.WantMap)

	resp := gin.H{"dssim": value}
	if spec.WantMap && ssimMap != nil {
		dissimMap := make([]float32, len(ssimMap))
		for i, s := range ssimMap {
			dissimMap[i] = 1 - s
		}
		resp["stats"] = stats.NewMap(dissimMap).String()
		resp["width"] = width
		resp["height"] = height
	}

	debug.FreeOSMemory()
	c.JSON(http.StatusOK, resp)
}

// postCompareHeatmap runs the same comparison but streams back a PNG
// rendering of the per-pixel SSIM map for channel 0, scale 0, via
// internal/heatmap, instead of a JSON body.
func postCompareHeatmap(c *gin.Context) {
	_, original, modified, attr, width, height, err := loadComparePair(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer attr.Dealloc()
	defer original.Release()
	defer modified.Release()

	_, ssimMap := dssim.Compare(attr, original, modified, true)
	if ssimMap == nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "no overlapping scale to render"})
		return
	}

	img, err := heatmap.Render(ssimMap, width, height)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Type", "image/png")
	if err := png.Encode(c.Writer, img); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	debug.FreeOSMemory()
}

// loadComparePair parses the job spec and both multipart images from the
// request, decoding them into *dssim.Image via internal/imageio.
func loadComparePair(c *gin.Context) (spec dssimjob.Spec, original, modified *dssim.Image, attr *dssim.Attr, width, height int, err error) {
	spec = dssimjob.NewSpecDefaults()
	if raw := c.PostForm("spec"); raw != "" {
		if err = json.Unmarshal([]byte(raw), &spec); err != nil {
			return
		}
	}

	originalBytes, err := readFormFile(c, "original")
	if err != nil {
		return
	}
	modifiedBytes, err := readFormFile(c, "modified")
	if err != nil {
		return
	}

	originalImg, _, err := imageio.Decode(originalBytes)
	if err != nil {
		err = fmt.Errorf("original: %w", err)
		return
	}
	modifiedImg, _, err := imageio.Decode(modifiedBytes)
	if err != nil {
		err = fmt.Errorf("modified: %w", err)
		return
	}

	attr = spec.Attr()

	original, err = imageio.ToDSSIMImage(attr, originalImg, spec.Gamma)
	if err != nil {
		err = fmt.Errorf("original: %w", err)
		return
	}
	modified, err = imageio.ToDSSIMImage(attr, modifiedImg, spec.Gamma)
	if err != nil {
		err = fmt.Errorf("modified: %w", err)
		return
	}

	width, height = original.Width(), original.Height()
	return
}

func readFormFile(c *gin.Context, field string) ([]byte, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, fmt.Errorf("missing form field %q: %w", field, err)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

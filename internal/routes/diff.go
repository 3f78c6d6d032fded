package routes

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	diffimage "pixeldiff/internal/diff/image"
	"pixeldiff/internal/imageio"
	"pixeldiff/internal/myhttp"
	"pixeldiff/internal/storage"
)

const maxUploadMemory = 32 << 20

type DiffResponse struct {
	DiffData    string                `json:"diffData"`
	DiffCount   uint32                `json:"diffCount"`
	TotalPixels int                   `json:"totalPixels"`
	DiffAmount  float64               `json:"diffAmount"`
	Regions     []diffimage.Rectangle `json:"regions"`
	DiffURL     string                `json:"diffURL,omitempty"`
}

type DiffMetrics struct {
	DurationMicroSeconds metric.Int64Histogram
	PixelsTotal          metric.Int64Counter
}

// Diff compares the multipart files "baseline" and "target". Results are
// also written to archive under their content hash when archive is set.
func Diff(defaults diffimage.Options, archive storage.Storage, metrics DiffMetrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := myhttp.Logger(r.Context())

		if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
			logger.Debug(fmt.Sprintf("failed to parse multipart form: %s", err))
			http.Error(w, "Invalid multipart form", http.StatusBadRequest)
			return
		}

		options, err := parseOptions(r, defaults)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		format, err := imageio.ParseFormatStrict(r.FormValue("format"))
		if err != nil {
			http.Error(w, fmt.Sprintf("invalid format: %q", r.FormValue("format")), http.StatusBadRequest)
			return
		}

		baselineData, err := formFile(r, "baseline")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		targetData, err := formFile(r, "target")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		baseline, target, err := imageio.DecodePair(baselineData, targetData)
		if err != nil {
			logger.Debug(fmt.Sprintf("failed to decode images: %s", err))
			status := http.StatusBadRequest
			if errors.Is(err, imageio.ErrDimensionMismatch) {
				status = http.StatusUnprocessableEntity
			}
			http.Error(w, err.Error(), status)
			return
		}

		now := time.Now()
		result, err := diffimage.Diff(baseline.Pix, target.Pix, baseline.Width, baseline.Height, options)
		if err != nil {
			logger.Error(fmt.Sprintf("failed to diff images: %s", err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		attrs := metric.WithAttributes(attribute.Key("include_aa").Bool(options.IncludeAA))
		metrics.DurationMicroSeconds.Record(r.Context(), time.Since(now).Microseconds(), attrs)
		metrics.PixelsTotal.Add(r.Context(), int64(result.TotalPixels()), attrs)

		encoded, err := imageio.EncodeBytes(&imageio.Raster{
			Pix:    result.Output,
			Width:  result.Width,
			Height: result.Height,
		}, format)
		if err != nil {
			logger.Error(fmt.Sprintf("failed to encode diff image: %s", err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		response := DiffResponse{
			DiffData:    base64.StdEncoding.EncodeToString(encoded),
			DiffCount:   result.DiffCount,
			TotalPixels: result.TotalPixels(),
			DiffAmount:  result.DiffAmount(),
			Regions:     result.Regions(),
		}
		if response.Regions == nil {
			response.Regions = []diffimage.Rectangle{}
		}

		if archive != nil {
			key := fmt.Sprintf("diff/%s.%s", contentKey(baselineData, targetData, options), format)
			url, err := archive.Put(r.Context(), key, encoded)
			if err != nil {
				logger.Error(fmt.Sprintf("failed to archive diff image: %s", err))
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			response.DiffURL = url
		}

		b, err := json.Marshal(response)
		if err != nil {
			logger.Error(fmt.Sprintf("failed to marshal json: %s", err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(b)
	}
}

func parseOptions(r *http.Request, defaults diffimage.Options) (diffimage.Options, error) {
	options := defaults

	if v := r.FormValue("threshold"); v != "" {
		threshold, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return options, fmt.Errorf("invalid threshold: %q", v)
		}
		options.Threshold = threshold
	}
	if v := r.FormValue("alpha"); v != "" {
		alpha, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return options, fmt.Errorf("invalid alpha: %q", v)
		}
		options.Alpha = alpha
	}
	if v := r.FormValue("includeAA"); v != "" {
		includeAA, err := strconv.ParseBool(v)
		if err != nil {
			return options, fmt.Errorf("invalid includeAA: %q", v)
		}
		options.IncludeAA = includeAA
	}

	if err := options.Validate(); err != nil {
		return options, err
	}
	return options, nil
}

func formFile(r *http.Request, name string) ([]byte, error) {
	f, _, err := r.FormFile(name)
	if err != nil {
		return nil, fmt.Errorf("missing file %q", name)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %q", name)
	}
	return data, nil
}

// contentKey names a diff after both inputs and the options that shape the
// rendered image, so only identical requests share one archived image.
func contentKey(baseline []byte, target []byte, options diffimage.Options) string {
	h := sha256.New()
	fmt.Fprintf(h, "%d:", len(baseline))
	h.Write(baseline)
	fmt.Fprintf(h, "%d:", len(target))
	h.Write(target)
	fmt.Fprintf(h, "threshold=%v alpha=%v includeAA=%t aa=%v diff=%v",
		options.Threshold, options.Alpha, options.IncludeAA, options.AAColor, options.DiffColor)
	return hex.EncodeToString(h.Sum(nil))[:16]
}

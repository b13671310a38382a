// Package vin enriches vehicle identifiers through the NHTSA vPIC
// DecodeVin endpoint.
package vin

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/auction-tracker/constants"
	"github.com/joseph-ayodele/auction-tracker/internal/entity"
)

var tracer = otel.Tracer("auction-tracker.core.vin")

type Config struct {
	APIURL      string // e.g. https://vpic.nhtsa.dot.gov/api/vehicles
	Concurrency int
	Timeout     time.Duration // per lookup, 0 = client default
}

type Decoder struct {
	client *resty.Client
	cfg    Config
	schema *jsonschema.Schema
	logger *slog.Logger
}

type decodeResponse struct {
	Results []struct {
		Variable string  `json:"Variable"`
		Value    *string `json:"Value"`
	} `json:"Results"`
}

func NewDecoder(client *resty.Client, cfg Config, logger *slog.Logger) (*Decoder, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if client == nil {
		client = resty.New()
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	cfg.APIURL = strings.TrimSuffix(cfg.APIURL, "/")
	schema, err := compileSchema(decodeResponseSchema)
	if err != nil {
		return nil, err
	}
	return &Decoder{client: client, cfg: cfg, schema: schema, logger: logger}, nil
}

// Decode looks up one VIN. Attributes with an empty or null value are
// dropped; the rest keep the order the service returned them in.
func (d *Decoder) Decode(ctx context.Context, vin string) (entity.VINDetail, error) {
	ctx, span := tracer.Start(ctx, "Decode")
	defer span.End()
	span.SetAttributes(attribute.String("vin", vin))

	if d.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.cfg.Timeout)
		defer cancel()
	}

	res, err := d.client.R().
		SetContext(ctx).
		SetPathParam("vin", vin).
		SetQueryParam("format", "json").
		Get(d.cfg.APIURL + "/DecodeVin/{vin}")
	if err != nil {
		return entity.VINDetail{}, fmt.Errorf("decode %s: %w", vin, err)
	}
	if !res.IsSuccess() {
		return entity.VINDetail{}, fmt.Errorf("decode %s: status code %d", vin, res.StatusCode())
	}
	if err := validateResponse(d.schema, res.Body()); err != nil {
		return entity.VINDetail{}, fmt.Errorf("decode %s: %w", vin, err)
	}

	var body decodeResponse
	if err := json.Unmarshal(res.Body(), &body); err != nil {
		return entity.VINDetail{}, fmt.Errorf("decode %s: %w", vin, err)
	}

	detail := entity.VINDetail{VIN: vin, Attributes: map[string]string{}}
	for _, r := range body.Results {
		if r.Value == nil || *r.Value == "" {
			continue
		}
		if r.Variable == constants.VINColumn {
			continue
		}
		if _, seen := detail.Attributes[r.Variable]; !seen {
			detail.Order = append(detail.Order, r.Variable)
		}
		detail.Attributes[r.Variable] = *r.Value
	}
	return detail, nil
}

// DecodeAll decodes each distinct VIN once, in first-seen order. A failed
// lookup becomes a {VIN, Error} record and never stops the others.
func (d *Decoder) DecodeAll(ctx context.Context, vins []string) []entity.VINDetail {
	ctx, span := tracer.Start(ctx, "DecodeAll")
	defer span.End()

	distinct := Distinct(vins)
	span.SetAttributes(attribute.Int("vins", len(distinct)))
	out := make([]entity.VINDetail, len(distinct))

	var g errgroup.Group
	g.SetLimit(d.cfg.Concurrency)
	for i, v := range distinct {
		i, v := i, v
		g.Go(func() error {
			detail, err := d.Decode(ctx, v)
			if err != nil {
				d.logger.Warn("vin.decode.failed", "vin", v, "error", err)
				detail = entity.VINDetail{VIN: v, Error: constants.VINLookupFailed}
			}
			out[i] = detail
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, o := range out {
		if o.Failed() {
			failed++
		}
	}
	d.logger.Info("vin.decode.done", "vins", len(out), "failed", failed)
	return out
}

// Distinct drops blanks and repeats, keeping first-seen order.
func Distinct(vins []string) []string {
	seen := make(map[string]struct{}, len(vins))
	out := make([]string, 0, len(vins))
	for _, v := range vins {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	DocumentsProcessed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "laytoneval_documents_processed_total",
		Help: "Total number of puzzle pages turned into records",
	})
	DocumentsSkipped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "laytoneval_documents_skipped_total",
		Help: "Total number of puzzle pages that could not be parsed",
	})
	RecordsEmpty = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "laytoneval_records_empty_total",
		Help: "Total number of records with no extracted field",
	})
	FieldFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "laytoneval_field_failures_total",
		Help: "Extraction errors absorbed per field",
	}, []string{"field"})

	PagesFetched = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "laytoneval_pages_fetched_total",
		Help: "Total number of pages successfully fetched",
	})
	BytesFetched = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "laytoneval_bytes_fetched_total",
		Help: "Total bytes downloaded",
	})
	FetchErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "laytoneval_fetch_errors_total",
		Help: "Total number of failed page or image downloads",
	})

	LLMRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "laytoneval_llm_requests_total",
		Help: "Language model requests by task and outcome",
	}, []string{"task", "status"})
)

func init() {
	prometheus.MustRegister(
		DocumentsProcessed, DocumentsSkipped, RecordsEmpty, FieldFailures,
		PagesFetched, BytesFetched, FetchErrors,
		LLMRequests,
	)
}

// Serve exposes /metrics on addr until ctx is cancelled
func Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

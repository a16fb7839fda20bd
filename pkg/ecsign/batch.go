package ecsign

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/mahdiidarabi/ecsign/internal/curve"
)

// progressInterval is how often SignBatch logs progress, in signatures.
const progressInterval = 1000

// BatchResult is the outcome of one request of a batch.
type BatchResult struct {
	Index      int    // Position of the request in the batch
	ID         string // ID of the request
	Signature  []byte // Encoded signature, nil on error
	RecoveryID byte   // Recovery id of the signature
	Err        error  // Per-request failure
}

// SignBatch signs every request with key on a pool of workers and returns the
// results in request order.  A failure of one request is reported in its
// result and does not stop the batch.  workers <= 0 selects one worker per
// CPU.  The returned error is non-nil only when ctx is done before all
// requests were signed.
func (s *Signer) SignBatch(ctx context.Context, key *PrivateKey, reqs []*SignRequest, workers int) ([]*BatchResult, error) {
	if key == nil {
		return nil, makeError(ErrInvalidPrivateKey, "private key is missing")
	}
	if !curve.IsWithinOrder(key.d) {
		return nil, makeError(ErrInvalidPrivateKey, "private key is not in [1, N-1]")
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make([]*BatchResult, len(reqs))
	signed := int64(0)
	workChan := make(chan int, workers*4)

	// Generate work
	go func() {
		defer close(workChan)
		for i := range reqs {
			select {
			case <-ctx.Done():
				return
			case workChan <- i:
			}
		}
	}()

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case i, ok := <-workChan:
					if !ok {
						return
					}
					results[i] = s.signRequest(i, reqs[i], key)

					if n := atomic.AddInt64(&signed, 1); n%progressInterval == 0 {
						s.logger.Info("batch signing progress",
							zap.Int64("signed", n), zap.Int("total", len(reqs)))
					}
				}
			}
		}()
	}
	wg.Wait()

	if n := atomic.LoadInt64(&signed); int(n) < len(reqs) {
		return nil, fmt.Errorf("batch signing interrupted after %d of %d requests: %w",
			n, len(reqs), ctx.Err())
	}
	return results, nil
}

func (s *Signer) signRequest(i int, req *SignRequest, key *PrivateKey) *BatchResult {
	result := &BatchResult{Index: i}
	if req == nil {
		result.Err = makeError(ErrInvalidMessageHash, "request is missing")
		return result
	}
	result.ID = req.ID

	sig, recoveryID, err := s.SignRecoverable(req.Hash, key)
	if err != nil {
		s.logger.Warn("failed to sign request", zap.String("id", req.ID), zap.Error(err))
		result.Err = err
		return result
	}
	result.Signature = sig
	result.RecoveryID = recoveryID
	return result
}

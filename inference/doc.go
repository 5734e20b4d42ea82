// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package inference is the client for the YOLO sign-detection service.

	client := inference.NewClient(cfg.InferenceURL, cfg.InferenceTimeout)
	result, err := client.Predict(ctx, inference.Upload{
		Filename:    "stop.jpg",
		ContentType: "image/jpeg",
		Data:        data,
	})

Handlers depend on the Predictor interface so tests can substitute a fake.

# Errors

  - ErrUnavailable (wrapped): connection refused, timeout, DNS failure
  - *StatusError: the service answered with a non-2xx status
  - anything else: the response body was not valid JSON
*/
package inference

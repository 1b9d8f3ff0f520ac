// Copyright 2025 Jelly Terra <jellyterra@proton.me>
// This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0
// that can be found in the LICENSE file and https://mozilla.org/MPL/2.0/.

package main

import (
	"context"
	"time"
)

// TimerNotify signals c every interval until ctx is done.
func TimerNotify(ctx context.Context, interval time.Duration, c chan<- struct{}) error {
	for {
		select {
		case <-time.After(interval):
			select {
			case c <- struct{}{}:
			case <-ctx.Done():
				return nil
			}
		case <-ctx.Done():
			return nil
		}
	}
}

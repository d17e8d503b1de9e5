/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package store

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

var (
	binsEnc cbor.EncMode
	binsDec cbor.DecMode
)

func init() {
	var err error

	binsEnc, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("store: CBOR encoder initialization failed: " + err.Error())
	}

	binsDec, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic("store: CBOR decoder initialization failed: " + err.Error())
	}
}

// encodeBins returns the blob stored for a bin histogram, or nil for a
// reading without one.
func encodeBins(bins []float64) (any, error) {
	if len(bins) == 0 {
		return nil, nil
	}

	data, err := binsEnc.Marshal(bins)
	if err != nil {
		return nil, fmt.Errorf("encode bins: %w", err)
	}

	return data, nil
}

func decodeBins(data []byte) ([]float64, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var bins []float64
	if err := binsDec.Unmarshal(data, &bins); err != nil {
		return nil, fmt.Errorf("decode bins: %w", err)
	}

	return bins, nil
}

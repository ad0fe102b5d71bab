// Copyright 2021 Matrix Origin
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package types

import (
	"sync"
	"time"
	// embed the zone database so that zone names resolve on hosts
	// without /usr/share/zoneinfo
	_ "time/tzdata"

	"github.com/matrixorigin/densify/pkg/common/moerr"
)

var loadLocation = time.LoadLocation

var zoneCache sync.Map // zone name -> *time.Location

// LoadZone resolves an IANA zone name, results are cached.
func LoadZone(name string) (*time.Location, error) {
	if v, ok := zoneCache.Load(name); ok {
		return v.(*time.Location), nil
	}
	if name == "" {
		return nil, moerr.NewInvalidTzNoCtx(name)
	}
	loc, err := loadLocation(name)
	if err != nil {
		return nil, moerr.NewInvalidTzNoCtx(name)
	}
	zoneCache.Store(name, loc)
	return loc, nil
}

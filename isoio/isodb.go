/*
Copyright © 2019 the Adsorb authors.
This file is part of Adsorb.

Adsorb is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

Adsorb is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with Adsorb.  If not, see <http://www.gnu.org/licenses/>.
*/

package isoio

import (
	"bytes"
	"context"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/spatialmodel/adsorb"
	"github.com/spatialmodel/adsorb/internal/errs"
)

// ISODBAPI is the address of the NIST ISODB web API.
var ISODBAPI = "https://adsorption.nist.gov/isodb/api"

// ISODBTries is the maximum number of attempts FromISODB makes.
const ISODBTries = 5

var isodbClient = &http.Client{Timeout: 10 * time.Second}

// FromISODB downloads the named isotherm from the NIST ISODB.
// Failed requests are retried with exponential backoff, except when
// the server rejects the request itself (a 4xx status).
func FromISODB(ctx context.Context, filename string) (adsorb.Isotherm, error) {
	u := fmt.Sprintf("%s/isotherm/%s.json", ISODBAPI, url.PathEscape(filename))
	var body []byte
	get := func() error {
		req, err := http.NewRequest(http.MethodGet, u, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := isodbClient.Do(req.WithContext(ctx))
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		switch {
		case resp.StatusCode >= 400 && resp.StatusCode < 500:
			return backoff.Permanent(fmt.Errorf("isoio: ISODB %s: %s", filename, resp.Status))
		case resp.StatusCode != http.StatusOK:
			return fmt.Errorf("isoio: ISODB %s: %s", filename, resp.Status)
		}
		body, err = ioutil.ReadAll(resp.Body)
		return err
	}
	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), ISODBTries-1), ctx)
	err := backoff.RetryNotify(get, b, func(err error, d time.Duration) {
		Log.WithField("isotherm", filename).Warnf("%v: retrying in %v", err, d)
	})
	if err != nil {
		return nil, errs.Parameter("downloading isotherm %s from the ISODB: %v", filename, err)
	}
	return ReadJSON(bytes.NewReader(body), FormatNIST)
}

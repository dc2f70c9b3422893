//
// Copyright 2017 The Tschart Authors. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package monitor

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"log"
	"net"
	"strings"
	"sync/atomic"
	"time"

	pickle "github.com/hydrogen18/stalecucumber"
	"github.com/tschart/tschart/misc"
	"github.com/tschart/tschart/series"
)

// Pickle listens for graphite pickle protocol batches: length-framed
// pickled lists of (name, (timestamp, value)). Points whose name
// matches the configured one (or all points, when name is empty)
// become samples. Timestamps are Unix seconds on the wire.
type Pickle struct {
	feed
	name     string
	listener net.Listener
	stop     int32
}

func NewPickle(listenSpec, name string) (*Pickle, error) {
	l, err := net.Listen("tcp", listenSpec)
	if err != nil {
		return nil, fmt.Errorf("pickle monitor: %v", err)
	}
	p := &Pickle{name: name, listener: l}
	log.Printf("Graphite pickle protocol listening on %s", l.Addr())
	go p.server()
	return p, nil
}

// Addr is the bound listener address.
func (p *Pickle) Addr() net.Addr {
	return p.listener.Addr()
}

func (p *Pickle) stopped() bool {
	return atomic.LoadInt32(&p.stop) != 0
}

// Stop closes the listener; in-flight connections finish on their
// own.
func (p *Pickle) Stop() error {
	if p.stopped() {
		return nil
	}
	atomic.StoreInt32(&p.stop, 1)
	return p.listener.Close()
}

func (p *Pickle) server() {
	var tempDelay time.Duration
	for {
		conn, err := p.listener.Accept()

		// This code comes from the golang http lib, it attempts to
		// retry accepting a connection when too many files are open
		// under heavy load.
		if err != nil {
			if p.stopped() {
				return
			}
			if ne, ok := err.(net.Error); ok && ne.Temporary() {
				if tempDelay == 0 {
					tempDelay = 5 * time.Millisecond
				} else {
					tempDelay *= 2
				}
				if max := 1 * time.Second; tempDelay > max {
					tempDelay = max
				}
				log.Printf("Accept error: %v; retrying in %v", err, tempDelay)
				time.Sleep(tempDelay)
				continue
			}
			return
		}
		tempDelay = 0

		go p.handleConn(conn, 30*time.Second)
	}
}

func (p *Pickle) handleConn(conn net.Conn, timeout time.Duration) {
	defer conn.Close()

	for !p.stopped() {
		if timeout != 0 {
			conn.SetDeadline(time.Now().Add(timeout))
		}

		var length uint32
		if err := binary.Read(conn, binary.BigEndian, &length); err != nil {
			logConnErr(err)
			return
		}
		buff := make([]byte, length)
		if _, err := io.ReadFull(conn, buff); err != nil {
			logConnErr(err)
			return
		}

		points, err := decodePickleFrame(buff)
		if err != nil {
			logConnErr(err)
			return
		}
		for _, np := range points {
			if p.name != "" && p.name != np.name {
				continue
			}
			p.add(series.Sample{
				T: misc.TimeToMJD(time.Unix(np.tstamp, 0)),
				Y: np.value,
			})
		}
	}
}

func logConnErr(err error) {
	if err == io.EOF || strings.Contains(err.Error(), "use of closed") {
		return
	}
	log.Printf("pickle monitor: error reading: %v", err)
}

type namedPoint struct {
	name   string
	tstamp int64
	value  float64
}

// decodePickleFrame unpickles one graphite batch, a list of
// (name, (timestamp, value)) items. Timestamps and values may arrive
// as ints or floats.
func decodePickleFrame(buff []byte) ([]namedPoint, error) {
	items, err := pickle.ListOrTuple(pickle.Unpickle(bytes.NewBuffer(buff)))
	if err != nil {
		return nil, err
	}

	out := make([]namedPoint, 0, len(items))
	for _, item := range items {
		var np namedPoint

		itemSlice, err := pickle.ListOrTuple(item, nil)
		if err != nil {
			return nil, err
		}
		if len(itemSlice) != 2 {
			return nil, fmt.Errorf("item wrong length: %d", len(itemSlice))
		}
		if np.name, err = pickle.String(itemSlice[0], nil); err != nil {
			return nil, err
		}
		dp, err := pickle.ListOrTuple(itemSlice[1], nil)
		if err != nil {
			return nil, err
		}
		if len(dp) != 2 {
			return nil, fmt.Errorf("dp wrong length: %d", len(dp))
		}
		if np.tstamp, err = pickle.Int(dp[0], nil); err != nil {
			var ft float64
			if ft, err = pickle.Float(dp[0], nil); err != nil {
				return nil, err
			}
			np.tstamp = int64(ft)
		}
		if np.value, err = pickle.Float(dp[1], nil); err != nil {
			var iv int64
			if iv, err = pickle.Int(dp[1], nil); err != nil {
				return nil, err
			}
			np.value = float64(iv)
		}
		out = append(out, np)
	}
	return out, nil
}

func (p *Pickle) GetData(chartId string) ([]series.Sample, error) {
	return p.take(chartId), nil
}

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

package sink

import (
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/tschart/tschart/chart"
	"github.com/tschart/tschart/series"
)

// PGSink archives every sample it receives into a PostgreSQL table,
// keyed by (series, t). A later sample at the same time overwrites
// the archived row and a deletion marker removes it, so the table
// mirrors what the in-memory series would rebuild to.
type PGSink struct {
	*Tracker
	dbConn     *sql.DB
	sql1, sql2 *sql.Stmt
	prefix     string
}

// InitPGSink connects, creates the sample table if missing and
// prepares the statements. prefix, when not empty, is prepended to
// the table name.
func InitPGSink(connectString, prefix string) (*PGSink, error) {
	dbConn, err := sql.Open("postgres", connectString)
	if err != nil {
		return nil, err
	}
	p := &PGSink{Tracker: NewTracker(), dbConn: dbConn, prefix: prefix}
	if err := p.dbConn.Ping(); err != nil {
		return nil, err
	}
	if err := p.createTablesIfNotExist(); err != nil {
		return nil, err
	}
	if err := p.prepareSqlStatements(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *PGSink) table() string {
	return pq.QuoteIdentifier(p.prefix + "sample")
}

func (p *PGSink) createTablesIfNotExist() error {
	create_sql := fmt.Sprintf(`
       CREATE TABLE IF NOT EXISTS %[1]s (
       name TEXT NOT NULL,
       t DOUBLE PRECISION NOT NULL,
       y DOUBLE PRECISION NOT NULL,
       PRIMARY KEY (name, t));
    `, p.table())
	if _, err := p.dbConn.Exec(create_sql); err != nil {
		return err
	}
	return nil
}

func (p *PGSink) prepareSqlStatements() error {
	var err error
	if p.sql1, err = p.dbConn.Prepare(fmt.Sprintf(
		"INSERT INTO %[1]s (name, t, y) VALUES ($1, $2, $3) "+
			"ON CONFLICT (name, t) DO UPDATE SET y = $3", p.table())); err != nil {
		return err
	}
	if p.sql2, err = p.dbConn.Prepare(fmt.Sprintf(
		"DELETE FROM %[1]s WHERE name = $1 AND t = $2", p.table())); err != nil {
		return err
	}
	return nil
}

func (p *PGSink) PutData(chartId, monitorId string, spec chart.PlotSpec, data []series.Sample) error {
	if _, err := p.Track(chartId, monitorId, spec, data); err != nil {
		return err
	}
	name := SeriesKey(chartId, monitorId)
	for _, s := range data {
		var err error
		if s.Deleted() {
			_, err = p.sql2.Exec(name, s.T)
		} else {
			_, err = p.sql1.Exec(name, s.T, s.Y)
		}
		if err != nil {
			return fmt.Errorf("archiving %s: %v", name, err)
		}
	}
	return nil
}

// Close releases the database connection.
func (p *PGSink) Close() error {
	return p.dbConn.Close()
}

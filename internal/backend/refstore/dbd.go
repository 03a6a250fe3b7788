package refstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"slurmrestd/internal/backend"
	"slurmrestd/internal/dataparser/v0039"
	"slurmrestd/shared/logger"
)

// querier is satisfied by both *sqlx.DB and *sqlx.Tx, since mutating
// calls run inside the request's lazily-started transaction while pure
// reads may run directly against the pool.
type querier interface {
	sqlx.Ext
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
	GetContext(ctx context.Context, dest any, query string, args ...any) error
}

func (s *Store) q() querier {
	if s.tx != nil {
		return s.tx
	}
	return s.db
}

func whereFromCond(cond map[string]string) (string, []any) {
	if len(cond) == 0 {
		return "", nil
	}
	clauses := make([]string, 0, len(cond))
	args := make([]any, 0, len(cond))
	i := 1
	for col, val := range cond {
		clauses = append(clauses, fmt.Sprintf("%q = $%d", col, i))
		args = append(args, val)
		i++
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// accounts

type accountRow struct {
	Name         string         `db:"name"`
	Description  string         `db:"description"`
	Organization string         `db:"organization"`
	Coordinators pq.StringArray `db:"coordinators"`
}

func (r accountRow) toRec() *v0039.AccountRec {
	return &v0039.AccountRec{Name: r.Name, Description: r.Description, Organization: r.Organization, Coordinators: []string(r.Coordinators)}
}

func (s *Store) ListAccounts(ctx context.Context, cond map[string]string) ([]*v0039.AccountRec, backend.RC) {
	where, args := whereFromCond(cond)
	var rows []accountRow
	if err := s.q().SelectContext(ctx, &rows, "SELECT name, description, organization, coordinators FROM accounts"+where, args...); err != nil {
		logger.Error("refstore: list accounts", logger.Err(err))
		return nil, backend.RCError
	}
	out := make([]*v0039.AccountRec, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toRec())
	}
	return out, backend.RCSuccess
}

func (s *Store) AddAccounts(ctx context.Context, recs []*v0039.AccountRec) backend.RC {
	tx, err := s.beginTx(ctx)
	if err != nil {
		return backend.RCError
	}
	for _, rec := range recs {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO accounts (name, description, organization, coordinators) VALUES ($1, $2, $3, $4)
			 ON CONFLICT (name) DO NOTHING`,
			rec.Name, rec.Description, rec.Organization, pq.Array(rec.Coordinators))
		if err != nil {
			logger.Error("refstore: add account", logger.Err(err))
			return backend.RCError
		}
	}
	return backend.RCSuccess
}

func (s *Store) ModifyAccounts(ctx context.Context, cond map[string]string, update *v0039.AccountRec) ([]*v0039.AccountRec, backend.RC) {
	matched, rc := s.ListAccounts(ctx, cond)
	if rc != backend.RCSuccess {
		return nil, rc
	}
	tx, err := s.beginTx(ctx)
	if err != nil {
		return nil, backend.RCError
	}
	for _, m := range matched {
		if update.Description != "" {
			m.Description = update.Description
		}
		if update.Organization != "" {
			m.Organization = update.Organization
		}
		_, err := tx.ExecContext(ctx, `UPDATE accounts SET description = $1, organization = $2 WHERE name = $3`,
			m.Description, m.Organization, m.Name)
		if err != nil {
			logger.Error("refstore: modify account", logger.Err(err))
			return nil, backend.RCError
		}
	}
	return matched, backend.RCSuccess
}

func (s *Store) RemoveAccounts(ctx context.Context, cond map[string]string) ([]*v0039.AccountRec, backend.RC) {
	matched, rc := s.ListAccounts(ctx, cond)
	if rc != backend.RCSuccess {
		return nil, rc
	}
	tx, err := s.beginTx(ctx)
	if err != nil {
		return nil, backend.RCError
	}
	where, args := whereFromCond(cond)
	if _, err := tx.ExecContext(ctx, "DELETE FROM accounts"+where, args...); err != nil {
		logger.Error("refstore: remove accounts", logger.Err(err))
		return nil, backend.RCError
	}
	return matched, backend.RCSuccess
}

func (s *Store) CoordAdd(ctx context.Context, account string, names []string) backend.RC {
	tx, err := s.beginTx(ctx)
	if err != nil {
		return backend.RCError
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE accounts SET coordinators = ARRAY(SELECT DISTINCT unnest(coordinators || $1::text[])) WHERE name = $2`,
		pq.Array(names), account)
	if err != nil {
		logger.Error("refstore: coord add", logger.Err(err))
		return backend.RCError
	}
	return backend.RCSuccess
}

func (s *Store) CoordRemove(ctx context.Context, account string, names []string) backend.RC {
	tx, err := s.beginTx(ctx)
	if err != nil {
		return backend.RCError
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE accounts SET coordinators = ARRAY(SELECT unnest(coordinators) EXCEPT SELECT unnest($1::text[])) WHERE name = $2`,
		pq.Array(names), account)
	if err != nil {
		logger.Error("refstore: coord remove", logger.Err(err))
		return backend.RCError
	}
	return backend.RCSuccess
}

// associations

type associationRow struct {
	ID        int64  `db:"id"`
	Account   string `db:"account"`
	Cluster   string `db:"cluster"`
	User      string `db:"user"`
	Partition string `db:"partition"`
	Tres      string `db:"tres"`
}

func (r associationRow) toRec() *v0039.AssociationRec {
	return &v0039.AssociationRec{ID: r.ID, Account: r.Account, Cluster: r.Cluster, User: r.User, Partition: r.Partition, TresStr: r.Tres}
}

func (s *Store) ListAssociations(ctx context.Context, cond map[string]string) ([]*v0039.AssociationRec, backend.RC) {
	where, args := whereFromCond(cond)
	var rows []associationRow
	if err := s.q().SelectContext(ctx, &rows, `SELECT id, account, cluster, "user", partition, tres FROM associations`+where, args...); err != nil {
		logger.Error("refstore: list associations", logger.Err(err))
		return nil, backend.RCError
	}
	out := make([]*v0039.AssociationRec, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toRec())
	}
	return out, backend.RCSuccess
}

func (s *Store) GetAssociation(ctx context.Context, id int64) (*v0039.AssociationRec, backend.RC) {
	var r associationRow
	if err := s.q().GetContext(ctx, &r, `SELECT id, account, cluster, "user", partition, tres FROM associations WHERE id = $1`, id); err != nil {
		return nil, backend.RCError
	}
	return r.toRec(), backend.RCSuccess
}

func (s *Store) AddAssociations(ctx context.Context, recs []*v0039.AssociationRec) backend.RC {
	tx, err := s.beginTx(ctx)
	if err != nil {
		return backend.RCError
	}
	for _, rec := range recs {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO associations (account, cluster, "user", partition, tres) VALUES ($1, $2, $3, $4, $5)`,
			rec.Account, rec.Cluster, rec.User, rec.Partition, rec.TresStr)
		if err != nil {
			logger.Error("refstore: add association", logger.Err(err))
			return backend.RCError
		}
	}
	return backend.RCSuccess
}

// ModifyAssociations applies a single diff record (computed by
// internal/operations/associations.go from the before/after TRES maps)
// and returns the updated rows.
func (s *Store) ModifyAssociations(ctx context.Context, diff *v0039.AssociationRec) ([]*v0039.AssociationRec, backend.RC) {
	tx, err := s.beginTx(ctx)
	if err != nil {
		return nil, backend.RCError
	}
	_, err = tx.ExecContext(ctx, `UPDATE associations SET tres = $1 WHERE id = $2`, diff.TresStr, diff.ID)
	if err != nil {
		logger.Error("refstore: modify association", logger.Err(err))
		return nil, backend.RCError
	}
	rec, rc := s.GetAssociation(ctx, diff.ID)
	if rc != backend.RCSuccess {
		return nil, rc
	}
	return []*v0039.AssociationRec{rec}, backend.RCSuccess
}

func (s *Store) RemoveAssociations(ctx context.Context, cond map[string]string) ([]*v0039.AssociationRec, backend.RC) {
	matched, rc := s.ListAssociations(ctx, cond)
	if rc != backend.RCSuccess {
		return nil, rc
	}
	tx, err := s.beginTx(ctx)
	if err != nil {
		return nil, backend.RCError
	}
	where, args := whereFromCond(cond)
	if _, err := tx.ExecContext(ctx, "DELETE FROM associations"+where, args...); err != nil {
		logger.Error("refstore: remove associations", logger.Err(err))
		return nil, backend.RCError
	}
	return matched, backend.RCSuccess
}

// qos

type qosRow struct {
	ID          int64          `db:"id"`
	Name        string         `db:"name"`
	PreemptList pq.StringArray `db:"preempt_list"`
}

func (r qosRow) toRec() *v0039.QOSRec {
	return &v0039.QOSRec{ID: r.ID, Name: r.Name, PreemptList: []string(r.PreemptList)}
}

func (s *Store) ListQOS(ctx context.Context, cond map[string]string) ([]*v0039.QOSRec, backend.RC) {
	where, args := whereFromCond(cond)
	var rows []qosRow
	if err := s.q().SelectContext(ctx, &rows, "SELECT id, name, preempt_list FROM qos"+where, args...); err != nil {
		logger.Error("refstore: list qos", logger.Err(err))
		return nil, backend.RCError
	}
	out := make([]*v0039.QOSRec, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toRec())
	}
	return out, backend.RCSuccess
}

func (s *Store) GetQOSByID(ctx context.Context, id int64) (*v0039.QOSRec, backend.RC) {
	var r qosRow
	if err := s.q().GetContext(ctx, &r, "SELECT id, name, preempt_list FROM qos WHERE id = $1", id); err != nil {
		return nil, backend.RCError
	}
	return r.toRec(), backend.RCSuccess
}

func (s *Store) GetQOSByName(ctx context.Context, name string) (*v0039.QOSRec, backend.RC) {
	var r qosRow
	if err := s.q().GetContext(ctx, &r, "SELECT id, name, preempt_list FROM qos WHERE name = $1", name); err != nil {
		return nil, backend.RCError
	}
	return r.toRec(), backend.RCSuccess
}

func (s *Store) AddQOS(ctx context.Context, rec *v0039.QOSRec) backend.RC {
	tx, err := s.beginTx(ctx)
	if err != nil {
		return backend.RCError
	}
	_, err = tx.ExecContext(ctx, `INSERT INTO qos (name, preempt_list) VALUES ($1, $2) ON CONFLICT (name) DO NOTHING`,
		rec.Name, pq.Array(rec.PreemptList))
	if err != nil {
		logger.Error("refstore: add qos", logger.Err(err))
		return backend.RCError
	}
	return backend.RCSuccess
}

// ModifyQOS overwrites preempt_list wholesale; a single-empty-string
// element clears the list, per spec.md §4.I's "preempt list clear
// sentinel".
func (s *Store) ModifyQOS(ctx context.Context, rec *v0039.QOSRec) ([]*v0039.QOSRec, backend.RC) {
	tx, err := s.beginTx(ctx)
	if err != nil {
		return nil, backend.RCError
	}
	preempt := rec.PreemptList
	if len(preempt) == 1 && preempt[0] == "" {
		preempt = nil
	}
	_, err = tx.ExecContext(ctx, `UPDATE qos SET preempt_list = $1 WHERE name = $2`, pq.Array(preempt), rec.Name)
	if err != nil {
		logger.Error("refstore: modify qos", logger.Err(err))
		return nil, backend.RCError
	}
	updated, rc := s.GetQOSByName(ctx, rec.Name)
	if rc != backend.RCSuccess {
		return nil, rc
	}
	return []*v0039.QOSRec{updated}, backend.RCSuccess
}

func (s *Store) RemoveQOS(ctx context.Context, cond map[string]string) ([]*v0039.QOSRec, backend.RC) {
	matched, rc := s.ListQOS(ctx, cond)
	if rc != backend.RCSuccess {
		return nil, rc
	}
	tx, err := s.beginTx(ctx)
	if err != nil {
		return nil, backend.RCError
	}
	where, args := whereFromCond(cond)
	if _, err := tx.ExecContext(ctx, "DELETE FROM qos"+where, args...); err != nil {
		logger.Error("refstore: remove qos", logger.Err(err))
		return nil, backend.RCError
	}
	return matched, backend.RCSuccess
}

// users

type userRow struct {
	Name         string         `db:"name"`
	AdminLevel   string         `db:"admin_level"`
	DefaultAcct  string         `db:"default_account"`
	DefaultWckey string         `db:"default_wckey"`
	Wckeys       pq.StringArray `db:"wckeys"`
}

func (r userRow) toRec() *v0039.UserRec {
	return &v0039.UserRec{Name: r.Name, AdminLevel: r.AdminLevel, DefaultAcct: r.DefaultAcct, DefaultWckey: r.DefaultWckey, WckeyList: []string(r.Wckeys)}
}

func (s *Store) ListUsers(ctx context.Context, cond map[string]string) ([]*v0039.UserRec, backend.RC) {
	where, args := whereFromCond(cond)
	var rows []userRow
	if err := s.q().SelectContext(ctx, &rows, "SELECT name, admin_level, default_account, default_wckey, wckeys FROM users"+where, args...); err != nil {
		logger.Error("refstore: list users", logger.Err(err))
		return nil, backend.RCError
	}
	out := make([]*v0039.UserRec, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toRec())
	}
	return out, backend.RCSuccess
}

func (s *Store) GetUser(ctx context.Context, name string) (*v0039.UserRec, backend.RC) {
	var r userRow
	if err := s.q().GetContext(ctx, &r, "SELECT name, admin_level, default_account, default_wckey, wckeys FROM users WHERE name = $1", name); err != nil {
		return nil, backend.RCError
	}
	return r.toRec(), backend.RCSuccess
}

func (s *Store) AddUsers(ctx context.Context, recs []*v0039.UserRec) backend.RC {
	tx, err := s.beginTx(ctx)
	if err != nil {
		return backend.RCError
	}
	for _, rec := range recs {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO users (name, admin_level, default_account, default_wckey, wckeys) VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (name) DO NOTHING`,
			rec.Name, rec.AdminLevel, rec.DefaultAcct, rec.DefaultWckey, pq.Array(rec.WckeyList))
		if err != nil {
			logger.Error("refstore: add user", logger.Err(err))
			return backend.RCError
		}
	}
	return backend.RCSuccess
}

func (s *Store) ModifyUser(ctx context.Context, rec *v0039.UserRec) ([]*v0039.UserRec, backend.RC) {
	tx, err := s.beginTx(ctx)
	if err != nil {
		return nil, backend.RCError
	}
	name := rec.Name
	if rec.OldName != "" {
		name = rec.OldName
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE users SET name = $1, admin_level = $2, default_account = $3, default_wckey = $4 WHERE name = $5`,
		rec.Name, rec.AdminLevel, rec.DefaultAcct, rec.DefaultWckey, name)
	if err != nil {
		logger.Error("refstore: modify user", logger.Err(err))
		return nil, backend.RCError
	}
	updated, rc := s.GetUser(ctx, rec.Name)
	if rc != backend.RCSuccess {
		return nil, rc
	}
	return []*v0039.UserRec{updated}, backend.RCSuccess
}

func (s *Store) RemoveUsers(ctx context.Context, cond map[string]string) ([]*v0039.UserRec, backend.RC) {
	matched, rc := s.ListUsers(ctx, cond)
	if rc != backend.RCSuccess {
		return nil, rc
	}
	tx, err := s.beginTx(ctx)
	if err != nil {
		return nil, backend.RCError
	}
	where, args := whereFromCond(cond)
	if _, err := tx.ExecContext(ctx, "DELETE FROM users"+where, args...); err != nil {
		logger.Error("refstore: remove users", logger.Err(err))
		return nil, backend.RCError
	}
	return matched, backend.RCSuccess
}

// wckeys

type wckeyRow struct {
	Name    string `db:"name"`
	Cluster string `db:"cluster"`
	User    string `db:"user"`
}

func (r wckeyRow) toRec() *v0039.WckeyRec {
	return &v0039.WckeyRec{Name: r.Name, Cluster: r.Cluster, User: r.User}
}

func (s *Store) ListWckeys(ctx context.Context, cond map[string]string) ([]*v0039.WckeyRec, backend.RC) {
	where, args := whereFromCond(cond)
	var rows []wckeyRow
	if err := s.q().SelectContext(ctx, &rows, `SELECT name, cluster, "user" FROM wckeys`+where, args...); err != nil {
		logger.Error("refstore: list wckeys", logger.Err(err))
		return nil, backend.RCError
	}
	out := make([]*v0039.WckeyRec, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toRec())
	}
	return out, backend.RCSuccess
}

func (s *Store) AddWckeys(ctx context.Context, recs []*v0039.WckeyRec) backend.RC {
	tx, err := s.beginTx(ctx)
	if err != nil {
		return backend.RCError
	}
	for _, rec := range recs {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO wckeys (name, cluster, "user") VALUES ($1, $2, $3) ON CONFLICT (name, cluster, "user") DO NOTHING`,
			rec.Name, rec.Cluster, rec.User)
		if err != nil {
			logger.Error("refstore: add wckey", logger.Err(err))
			return backend.RCError
		}
	}
	return backend.RCSuccess
}

func (s *Store) RemoveWckeys(ctx context.Context, cond map[string]string) ([]*v0039.WckeyRec, backend.RC) {
	matched, rc := s.ListWckeys(ctx, cond)
	if rc != backend.RCSuccess {
		return nil, rc
	}
	tx, err := s.beginTx(ctx)
	if err != nil {
		return nil, backend.RCError
	}
	where, args := whereFromCond(cond)
	if _, err := tx.ExecContext(ctx, "DELETE FROM wckeys"+where, args...); err != nil {
		logger.Error("refstore: remove wckeys", logger.Err(err))
		return nil, backend.RCError
	}
	return matched, backend.RCSuccess
}

// tres

type tresRow struct {
	Type  string `db:"type"`
	Name  string `db:"name"`
	Count int64  `db:"count"`
}

func (r tresRow) toRec() *v0039.TresRec {
	return &v0039.TresRec{Type: r.Type, Name: r.Name, Count: r.Count}
}

func (s *Store) ListTres(ctx context.Context, cond map[string]string) ([]*v0039.TresRec, backend.RC) {
	where, args := whereFromCond(cond)
	var rows []tresRow
	if err := s.q().SelectContext(ctx, &rows, "SELECT type, name, count FROM tres"+where, args...); err != nil {
		logger.Error("refstore: list tres", logger.Err(err))
		return nil, backend.RCError
	}
	out := make([]*v0039.TresRec, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toRec())
	}
	return out, backend.RCSuccess
}

func (s *Store) AddTres(ctx context.Context, recs []*v0039.TresRec) backend.RC {
	tx, err := s.beginTx(ctx)
	if err != nil {
		return backend.RCError
	}
	for _, rec := range recs {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO tres (type, name, count) VALUES ($1, $2, $3)
			 ON CONFLICT (type, name) DO UPDATE SET count = EXCLUDED.count`,
			rec.Type, rec.Name, rec.Count)
		if err != nil {
			logger.Error("refstore: add tres", logger.Err(err))
			return backend.RCError
		}
	}
	return backend.RCSuccess
}

// clusters

type clusterRow struct {
	Name  string `db:"name"`
	Nodes string `db:"nodes"`
}

func (r clusterRow) toRec() *v0039.ClusterRec {
	return &v0039.ClusterRec{Name: r.Name, Nodes: r.Nodes}
}

func (s *Store) ListClusters(ctx context.Context, cond map[string]string) ([]*v0039.ClusterRec, backend.RC) {
	where, args := whereFromCond(cond)
	var rows []clusterRow
	if err := s.q().SelectContext(ctx, &rows, "SELECT name, nodes FROM clusters"+where, args...); err != nil {
		logger.Error("refstore: list clusters", logger.Err(err))
		return nil, backend.RCError
	}
	out := make([]*v0039.ClusterRec, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toRec())
	}
	return out, backend.RCSuccess
}

func (s *Store) AddClusters(ctx context.Context, recs []*v0039.ClusterRec) backend.RC {
	tx, err := s.beginTx(ctx)
	if err != nil {
		return backend.RCError
	}
	for _, rec := range recs {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO clusters (name, nodes) VALUES ($1, $2) ON CONFLICT (name) DO UPDATE SET nodes = EXCLUDED.nodes`,
			rec.Name, rec.Nodes)
		if err != nil {
			logger.Error("refstore: add cluster", logger.Err(err))
			return backend.RCError
		}
	}
	return backend.RCSuccess
}

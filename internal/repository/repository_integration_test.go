package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/anshulagrawal2902/MSS/internal/database"
	"github.com/anshulagrawal2902/MSS/internal/model"
)

// openTestDB connects to the MySQL instance named by TEST_DB_DSN and
// applies the schema.  The DSN must carry parseTime=true, e.g.
// "root:@tcp(127.0.0.1:3306)/collab_test?parseTime=true".
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set; skipping integration test")
	}
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := database.EnsureSchema(context.Background(), db); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	return db
}

// seedUser registers a throwaway user with a unique email.
func seedUser(t *testing.T, users *UserRepo, tag string) uint64 {
	t.Helper()
	suffix := fmt.Sprintf("%s-%d", tag, time.Now().UnixNano())
	id, err := users.Create(context.Background(),
		"user-"+suffix, "user-"+suffix+"@example.org", "hunter2", 4)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return id
}

func TestUserRepoDuplicateEmail(t *testing.T) {
	db := openTestDB(t)
	users := NewUserRepo(db)
	ctx := context.Background()

	email := fmt.Sprintf("dup-%d@example.org", time.Now().UnixNano())
	if _, err := users.Create(ctx, "first", email, "hunter2", 4); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := users.Create(ctx, "second", email, "hunter2", 4); !errors.Is(err, ErrEmailExists) {
		t.Fatalf("err=%v, want ErrEmailExists", err)
	}
}

func TestOperationCreateGrantsCreator(t *testing.T) {
	db := openTestDB(t)
	users := NewUserRepo(db)
	ops := NewOperationRepo(db)
	perms := NewPermissionRepo(db)
	changes := NewChangeRepo(db)
	ctx := context.Background()

	uid := seedUser(t, users, "creator")
	path := fmt.Sprintf("op-%d", time.Now().UnixNano())
	opID, err := ops.Create(ctx, path, "test operation", "", uid)
	if err != nil {
		t.Fatalf("create operation: %v", err)
	}

	perm, err := perms.Get(ctx, uid, opID)
	if err != nil {
		t.Fatalf("get permission: %v", err)
	}
	if perm.AccessLevel != model.AccessCreator {
		t.Fatalf("access_level=%q, want creator", perm.AccessLevel)
	}

	// The operation starts with an empty document already in place.
	doc, err := changes.GetDocument(ctx, opID)
	if err != nil {
		t.Fatalf("get document: %v", err)
	}
	if doc.Content != "" {
		t.Fatalf("content=%q, want empty", doc.Content)
	}

	// A second operation on the same path conflicts.
	if _, err := ops.Create(ctx, path, "again", "", uid); !errors.Is(err, ErrConflict) {
		t.Fatalf("err=%v, want ErrConflict", err)
	}
}

func TestMessageReplyCascade(t *testing.T) {
	db := openTestDB(t)
	users := NewUserRepo(db)
	ops := NewOperationRepo(db)
	messages := NewMessageRepo(db)
	ctx := context.Background()

	uid := seedUser(t, users, "chat")
	opID, err := ops.Create(ctx, fmt.Sprintf("chat-%d", time.Now().UnixNano()), "", "", uid)
	if err != nil {
		t.Fatalf("create operation: %v", err)
	}

	top, err := messages.Add(ctx, opID, uid, "top level", model.MessageText, model.NoReply)
	if err != nil {
		t.Fatalf("add top-level: %v", err)
	}
	reply, err := messages.Add(ctx, opID, uid, "a reply", model.MessageText, int64(top.ID))
	if err != nil {
		t.Fatalf("add reply: %v", err)
	}
	if reply.ReplyID == nil || *reply.ReplyID != top.ID {
		t.Fatalf("reply parent=%v, want %d", reply.ReplyID, top.ID)
	}

	// A reply to a reply breaks the two-level convention.
	if _, err := messages.Add(ctx, opID, uid, "too deep", model.MessageText, int64(reply.ID)); !errors.Is(err, ErrConflict) {
		t.Fatalf("err=%v, want ErrConflict", err)
	}
	// A reply to a nonexistent parent is NotFound.
	if _, err := messages.Add(ctx, opID, uid, "orphan", model.MessageText, 999999999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err=%v, want ErrNotFound", err)
	}

	// Mutations claiming a different operation never reach the row.
	otherOp, err := ops.Create(ctx, fmt.Sprintf("other-%d", time.Now().UnixNano()), "", "", uid)
	if err != nil {
		t.Fatalf("create second operation: %v", err)
	}
	if err := messages.Edit(ctx, otherOp, top.ID, "hijacked"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("cross-op edit err=%v, want ErrNotFound", err)
	}
	if err := messages.Delete(ctx, otherOp, top.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("cross-op delete err=%v, want ErrNotFound", err)
	}
	if got, err := messages.GetByID(ctx, top.ID); err != nil || got.Text != "top level" {
		t.Fatalf("message mutated across operations: %+v err=%v", got, err)
	}

	// Deleting the top-level message takes the reply with it.
	if err := messages.Delete(ctx, opID, top.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := messages.GetByID(ctx, reply.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("reply survived cascade: err=%v", err)
	}
	if err := messages.Delete(ctx, opID, top.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("double delete err=%v, want ErrNotFound", err)
	}
}

func TestRefreshTokenLifecycle(t *testing.T) {
	db := openTestDB(t)
	users := NewUserRepo(db)
	tokens := NewTokenRepo(db)
	ctx := context.Background()

	uid := seedUser(t, users, "tokens")
	hash := fmt.Sprintf("hash-%d", time.Now().UnixNano())
	stale := hash + "-stale"

	if err := tokens.StoreRefresh(ctx, uid, hash, time.Now().UTC().Add(time.Hour)); err != nil {
		t.Fatalf("store: %v", err)
	}
	if err := tokens.StoreRefresh(ctx, uid, stale, time.Now().UTC().Add(-time.Hour)); err != nil {
		t.Fatalf("store expired: %v", err)
	}

	got, err := tokens.ValidateRefresh(ctx, hash)
	if err != nil || got != uid {
		t.Fatalf("validate=%d err=%v, want %d", got, err, uid)
	}
	// Expired and unknown hashes look identical to the caller.
	if _, err := tokens.ValidateRefresh(ctx, stale); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expired err=%v, want sql.ErrNoRows", err)
	}
	if _, err := tokens.ValidateRefresh(ctx, hash+"-missing"); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("unknown err=%v, want sql.ErrNoRows", err)
	}

	if err := tokens.RevokeByHash(ctx, hash); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if _, err := tokens.ValidateRefresh(ctx, hash); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("revoked err=%v, want sql.ErrNoRows", err)
	}

	second := hash + "-second"
	if err := tokens.StoreRefresh(ctx, uid, second, time.Now().UTC().Add(time.Hour)); err != nil {
		t.Fatalf("store second: %v", err)
	}
	if err := tokens.RevokeAllForUser(ctx, uid); err != nil {
		t.Fatalf("revoke all: %v", err)
	}
	if _, err := tokens.ValidateRefresh(ctx, second); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("err after revoke-all=%v, want sql.ErrNoRows", err)
	}
}

func TestOperationDeleteWithThreadedMessages(t *testing.T) {
	db := openTestDB(t)
	users := NewUserRepo(db)
	ops := NewOperationRepo(db)
	messages := NewMessageRepo(db)
	ctx := context.Background()

	uid := seedUser(t, users, "threaded")
	opID, err := ops.Create(ctx, fmt.Sprintf("thr-%d", time.Now().UnixNano()), "", "", uid)
	if err != nil {
		t.Fatalf("create operation: %v", err)
	}

	top, err := messages.Add(ctx, opID, uid, "top level", model.MessageText, model.NoReply)
	if err != nil {
		t.Fatalf("add top-level: %v", err)
	}
	reply, err := messages.Add(ctx, opID, uid, "a reply", model.MessageText, int64(top.ID))
	if err != nil {
		t.Fatalf("add reply: %v", err)
	}

	// Deleting the operation cascades through messages even while
	// reply rows still reference their parents.
	if err := ops.Delete(ctx, opID); err != nil {
		t.Fatalf("delete operation: %v", err)
	}
	for _, id := range []uint64{top.ID, reply.ID} {
		if _, err := messages.GetByID(ctx, id); !errors.Is(err, ErrNotFound) {
			t.Fatalf("message %d survived operation delete: err=%v", id, err)
		}
	}
}

func TestSaveDocumentVersioning(t *testing.T) {
	db := openTestDB(t)
	users := NewUserRepo(db)
	ops := NewOperationRepo(db)
	changes := NewChangeRepo(db)
	ctx := context.Background()

	uid := seedUser(t, users, "saver")
	opID, err := ops.Create(ctx, fmt.Sprintf("doc-%d", time.Now().UnixNano()), "", "", uid)
	if err != nil {
		t.Fatalf("create operation: %v", err)
	}

	first, err := changes.SaveDocument(ctx, opID, uid, "content v1", "v1", "initial")
	if err != nil {
		t.Fatalf("save v1: %v", err)
	}
	second, err := changes.SaveDocument(ctx, opID, uid, "content v2", "v2", "")
	if err != nil {
		t.Fatalf("save v2: %v", err)
	}
	if first.CommitHash == second.CommitHash {
		t.Fatal("distinct contents produced identical commit hashes")
	}

	doc, err := changes.GetDocument(ctx, opID)
	if err != nil {
		t.Fatalf("get document: %v", err)
	}
	if doc.Content != "content v2" {
		t.Fatalf("content=%q, want latest save", doc.Content)
	}

	history, err := changes.ListByOperation(ctx, opID)
	if err != nil {
		t.Fatalf("list changes: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("history length=%d, want 2", len(history))
	}
	if history[0].ID != second.ID {
		t.Fatalf("newest first: got id %d, want %d", history[0].ID, second.ID)
	}
}

func TestPermissionUpsertAndBulkRevoke(t *testing.T) {
	db := openTestDB(t)
	users := NewUserRepo(db)
	ops := NewOperationRepo(db)
	perms := NewPermissionRepo(db)
	ctx := context.Background()

	creator := seedUser(t, users, "owner")
	member := seedUser(t, users, "member")
	opID, err := ops.Create(ctx, fmt.Sprintf("perm-%d", time.Now().UnixNano()), "", "", creator)
	if err != nil {
		t.Fatalf("create operation: %v", err)
	}

	if err := perms.Upsert(ctx, member, opID, model.AccessViewer); err != nil {
		t.Fatalf("grant: %v", err)
	}
	if err := perms.Upsert(ctx, member, opID, model.AccessAdmin); err != nil {
		t.Fatalf("upgrade: %v", err)
	}
	perm, err := perms.Get(ctx, member, opID)
	if err != nil || perm.AccessLevel != model.AccessAdmin {
		t.Fatalf("get=%+v err=%v, want admin", perm, err)
	}

	// Single revoke of the creator row is refused at the store level.
	if err := perms.Delete(ctx, creator, opID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("revoke creator err=%v, want ErrForbidden", err)
	}

	// Bulk revoke removes the member but never the creator.
	removed, err := perms.DeleteBulk(ctx, opID, []uint64{member, creator})
	if err != nil {
		t.Fatalf("bulk revoke: %v", err)
	}
	if len(removed) != 1 || removed[0] != member {
		t.Fatalf("removed=%v, want [%d]", removed, member)
	}
	if _, err := perms.Get(ctx, creator, opID); err != nil {
		t.Fatalf("creator permission gone: %v", err)
	}
}

package db

import (
	"context"
	"database/sql"
	"sync"

	"github.com/google/uuid"
	"github.com/mimusdev/mimus/domain"
	"github.com/mimusdev/mimus/util"
	"log"
	"modernc.org/sqlite"
	sqlitelib "modernc.org/sqlite/lib"
	"time"
)

// DB is the database struct.
type DB struct {
	db *sql.DB
}

var (
	dbInstance *DB
	dbOnce     sync.Once
)

const (
	//Actors
	sqlCreateActorsTable = `CREATE TABLE IF NOT EXISTS actors(
                        id INTEGER PRIMARY KEY AUTOINCREMENT,
                        canonical_url varchar(500) UNIQUE NOT NULL,
                        display_name varchar(255),
                        handle varchar(100) NOT NULL,
                        avatar_url varchar(500),
                        network_origin varchar(50) default 'mimus',
                        is_self int default 0,
                        relation int default 0,
                        created_at timestamp default current_timestamp
                        )`
	sqlInsertActor        = `INSERT INTO actors(canonical_url, display_name, handle, avatar_url, network_origin, is_self, relation, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	sqlSelectActorById    = `SELECT id, canonical_url, display_name, handle, avatar_url, network_origin, is_self, relation, created_at FROM actors WHERE id = ?`
	sqlSelectActorByUrl   = `SELECT id, canonical_url, display_name, handle, avatar_url, network_origin, is_self, relation, created_at FROM actors WHERE canonical_url = ?`
	sqlSelectActorByHandle = `SELECT id, canonical_url, display_name, handle, avatar_url, network_origin, is_self, relation, created_at FROM actors WHERE handle = ?`

	//Posts
	sqlCreatePostsTable = `CREATE TABLE IF NOT EXISTS posts(
                        id INTEGER PRIMARY KEY AUTOINCREMENT,
                        guid uuid NOT NULL,
                        uri varchar(500) UNIQUE NOT NULL,
                        parent_id integer NOT NULL DEFAULT 0,
                        thread_parent_uri varchar(500) NOT NULL DEFAULT '',
                        author_id integer NOT NULL,
                        owner_id integer NOT NULL,
                        body text,
                        title varchar(255) default '',
                        created_at timestamp default current_timestamp,
                        allow_users text default '',
                        allow_groups text default '',
                        deny_users text default '',
                        deny_groups text default '',
                        starred int default 0,
                        network_origin varchar(50) default 'mimus',
                        coordinates varchar(100) default '',
                        source_client varchar(255) default ''
                        )`
	sqlPostColumns = `id, guid, uri, parent_id, thread_parent_uri, author_id, owner_id, body, title, created_at,
                        allow_users, allow_groups, deny_users, deny_groups, starred, network_origin, coordinates, source_client`
	sqlInsertPost = `INSERT INTO posts(guid, uri, parent_id, thread_parent_uri, author_id, owner_id, body, title, created_at,
                        allow_users, allow_groups, deny_users, deny_groups, starred, network_origin, coordinates, source_client)
                        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	sqlSelfParentPost  = `UPDATE posts SET parent_id = id WHERE id = ? AND parent_id = 0`
	sqlSelectPostById  = `SELECT ` + sqlPostColumns + ` FROM posts WHERE id = ?`
	sqlSelectPostByUri = `SELECT ` + sqlPostColumns + ` FROM posts WHERE uri = ?`
	sqlDeletePost      = `DELETE FROM posts WHERE id = ?`
	sqlUpdateStarred   = `UPDATE posts SET starred = ? WHERE id = ?`

	// Listing queries share the pagination predicate:
	// id > since AND (max == 0 OR id <= max).
	sqlWindow = ` AND posts.id > ? AND (? = 0 OR posts.id <= ?) `

	sqlSelectPublicTimeline = `SELECT ` + sqlPostColumns + ` FROM posts
                        WHERE allow_users = '' AND allow_groups = '' AND deny_users = '' AND deny_groups = ''` +
		sqlWindow + `ORDER BY id DESC LIMIT ? OFFSET ?`
	sqlSelectHomeTimeline = `SELECT ` + sqlPostColumns + ` FROM posts
                        WHERE (author_id = ? OR author_id IN (SELECT target_actor_id FROM follows WHERE actor_id = ?))` +
		sqlWindow + `ORDER BY id DESC LIMIT ? OFFSET ?`
	sqlSelectUserTimeline = `SELECT ` + sqlPostColumns + ` FROM posts
                        WHERE author_id = ?` + sqlWindow + `ORDER BY id DESC LIMIT ? OFFSET ?`
	sqlSelectMentions = `SELECT ` + sqlPostColumns + ` FROM posts
                        WHERE body LIKE '%' || ? || '%' AND author_id != ?` + sqlWindow + `ORDER BY id DESC LIMIT ? OFFSET ?`
	sqlSelectConversation = `SELECT ` + sqlPostColumns + ` FROM posts
                        WHERE parent_id = ?` + sqlWindow + `ORDER BY id ASC LIMIT ? OFFSET ?`
	sqlSelectFavorites = `SELECT ` + sqlPostColumns + ` FROM posts
                        WHERE starred = 1 AND owner_id = ?` + sqlWindow + `ORDER BY id DESC LIMIT ? OFFSET ?`
	sqlCountPostsSince = `SELECT COUNT(*) FROM posts WHERE author_id = ? AND created_at > ?`

	//Credentials
	sqlCreateCredentialsTable = `CREATE TABLE IF NOT EXISTS credentials(
                        id INTEGER PRIMARY KEY AUTOINCREMENT,
                        username varchar(100) UNIQUE NOT NULL,
                        password_hash varchar(100) default '',
                        public_key_pem text default '',
                        private_key_pem text default '',
                        ssh_key_hash varchar(100) UNIQUE,
                        actor_id integer NOT NULL,
                        first_time_login int default 1,
                        created_at timestamp default current_timestamp
                        )`
	sqlCredColumns = `id, username, password_hash, public_key_pem, private_key_pem, ssh_key_hash, actor_id, first_time_login, created_at`
	sqlInsertCredential           = `INSERT INTO credentials(username, password_hash, public_key_pem, private_key_pem, ssh_key_hash, actor_id, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`
	sqlSelectCredentialByUsername = `SELECT ` + sqlCredColumns + ` FROM credentials WHERE username = ?`
	sqlSelectCredentialBySshKey   = `SELECT ` + sqlCredColumns + ` FROM credentials WHERE ssh_key_hash = ?`
	sqlUpdateLoginCredential      = `UPDATE credentials SET first_time_login = 0, username = ? WHERE ssh_key_hash = ?`

	//Direct messages
	sqlCreateMessagesTable = `CREATE TABLE IF NOT EXISTS messages(
                        id INTEGER PRIMARY KEY AUTOINCREMENT,
                        guid uuid NOT NULL,
                        uri varchar(500) NOT NULL,
                        parent_uri varchar(500) default '',
                        sender_id integer NOT NULL,
                        recipient_id integer NOT NULL,
                        title varchar(255) default '',
                        body text,
                        seen int default 0,
                        created_at timestamp default current_timestamp
                        )`
	sqlMessageColumns = `id, guid, uri, parent_uri, sender_id, recipient_id, title, body, seen, created_at`
	sqlInsertMessage  = `INSERT INTO messages(guid, uri, parent_uri, sender_id, recipient_id, title, body, seen, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	sqlSelectMessageById = `SELECT ` + sqlMessageColumns + ` FROM messages WHERE id = ?`
	sqlSelectMessagesReceived = `SELECT ` + sqlMessageColumns + ` FROM messages
                        WHERE recipient_id = ? AND id > ? AND (? = 0 OR id <= ?) ORDER BY id DESC LIMIT ? OFFSET ?`
	sqlSelectMessagesSent = `SELECT ` + sqlMessageColumns + ` FROM messages
                        WHERE sender_id = ? AND id > ? AND (? = 0 OR id <= ?) ORDER BY id DESC LIMIT ? OFFSET ?`
	sqlDeleteMessage = `DELETE FROM messages WHERE id = ?`

	//Follows
	sqlCreateFollowsTable = `CREATE TABLE IF NOT EXISTS follows(
                        id INTEGER PRIMARY KEY AUTOINCREMENT,
                        actor_id integer NOT NULL,
                        target_actor_id integer NOT NULL,
                        created_at timestamp default current_timestamp,
                        UNIQUE(actor_id, target_actor_id)
                        )`
	sqlInsertFollow = `INSERT INTO follows(actor_id, target_actor_id, created_at) VALUES (?, ?, ?)`
)

func (db *DB) CreateActor(actor *domain.Actor) (error, int64) {
	var id int64
	err := db.wrapTransaction(func(tx *sql.Tx) error {
		res, err := tx.Exec(sqlInsertActor, actor.CanonicalUrl, actor.DisplayName, actor.Handle,
			actor.AvatarUrl, actor.NetworkOrigin, boolToInt(actor.IsSelf), int(actor.Relation), time.Now())
		if err != nil {
			return err
		}
		id, err = res.LastInsertId()
		return err
	})
	return err, id
}

func (db *DB) ReadActorById(id int64) (error, *domain.Actor) {
	return db.scanActor(db.db.QueryRow(sqlSelectActorById, id))
}

func (db *DB) ReadActorByUrl(url string) (error, *domain.Actor) {
	return db.scanActor(db.db.QueryRow(sqlSelectActorByUrl, url))
}

func (db *DB) ReadActorByHandle(handle string) (error, *domain.Actor) {
	return db.scanActor(db.db.QueryRow(sqlSelectActorByHandle, handle))
}

func (db *DB) scanActor(row *sql.Row) (error, *domain.Actor) {
	var a domain.Actor
	var isSelf, relation int
	err := row.Scan(&a.Id, &a.CanonicalUrl, &a.DisplayName, &a.Handle, &a.AvatarUrl,
		&a.NetworkOrigin, &isSelf, &relation, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return err, nil
	}
	a.IsSelf = isSelf != 0
	a.Relation = domain.RelationState(relation)
	return err, &a
}

// CreatePost stores a new post and returns its server-assigned id. A post
// without a resolvable thread parent becomes its own thread root.
func (db *DB) CreatePost(save *domain.SavePost, baseUrl string) (error, int64) {
	var id int64
	guid := uuid.New().String()

	parentId := int64(0)
	threadParentUri := save.ThreadParentUri
	if threadParentUri != "" {
		err, parent := db.ReadPostByUri(threadParentUri)
		if err == nil && parent != nil {
			parentId = parent.ParentId
		}
	}

	network := save.NetworkOrigin
	if network == "" {
		network = domain.NetworkNative
	}

	err := db.wrapTransaction(func(tx *sql.Tx) error {
		uri := baseUrl + "/posts/" + guid
		res, err := tx.Exec(sqlInsertPost, guid, uri, parentId, threadParentUri,
			save.AuthorId, save.AuthorId, save.Body, save.Title, time.Now(),
			"", "", "", "", 0, network, save.Coordinates, save.SourceClient)
		if err != nil {
			return err
		}
		id, err = res.LastInsertId()
		if err != nil {
			return err
		}
		if _, err = tx.Exec(sqlSelfParentPost, id); err != nil {
			return err
		}
		// A root post carries its own uri as thread parent.
		if threadParentUri == "" {
			_, err = tx.Exec(`UPDATE posts SET thread_parent_uri = uri WHERE id = ?`, id)
		}
		return err
	})
	if err != nil {
		return err, 0
	}

	return nil, id
}

func (db *DB) ReadPostById(id int64) (error, *domain.Post) {
	return scanPost(db.db.QueryRow(sqlSelectPostById, id))
}

func (db *DB) ReadPostByUri(uri string) (error, *domain.Post) {
	return scanPost(db.db.QueryRow(sqlSelectPostByUri, uri))
}

func (db *DB) DeletePost(id int64) error {
	return db.wrapTransaction(func(tx *sql.Tx) error {
		_, err := tx.Exec(sqlDeletePost, id)
		return err
	})
}

func (db *DB) UpdateStarred(id int64, starred bool) error {
	return db.wrapTransaction(func(tx *sql.Tx) error {
		_, err := tx.Exec(sqlUpdateStarred, boolToInt(starred), id)
		return err
	})
}

func (db *DB) ReadPublicTimeline(w domain.Window) (error, *[]domain.Post) {
	return db.queryPosts(sqlSelectPublicTimeline, w.SinceId, w.MaxId, w.MaxId, w.Limit, w.Offset)
}

func (db *DB) ReadHomeTimeline(actorId int64, w domain.Window) (error, *[]domain.Post) {
	return db.queryPosts(sqlSelectHomeTimeline, actorId, actorId, w.SinceId, w.MaxId, w.MaxId, w.Limit, w.Offset)
}

func (db *DB) ReadUserTimeline(actorId int64, w domain.Window) (error, *[]domain.Post) {
	return db.queryPosts(sqlSelectUserTimeline, actorId, w.SinceId, w.MaxId, w.MaxId, w.Limit, w.Offset)
}

func (db *DB) ReadMentions(actorUrl string, actorId int64, w domain.Window) (error, *[]domain.Post) {
	return db.queryPosts(sqlSelectMentions, actorUrl, actorId, w.SinceId, w.MaxId, w.MaxId, w.Limit, w.Offset)
}

// ReadConversation lists one full thread in ascending id order.
func (db *DB) ReadConversation(rootId int64, w domain.Window) (error, *[]domain.Post) {
	return db.queryPosts(sqlSelectConversation, rootId, w.SinceId, w.MaxId, w.MaxId, w.Limit, w.Offset)
}

func (db *DB) ReadFavorites(ownerId int64, w domain.Window) (error, *[]domain.Post) {
	return db.queryPosts(sqlSelectFavorites, ownerId, w.SinceId, w.MaxId, w.MaxId, w.Limit, w.Offset)
}

func (db *DB) CountPostsSince(authorId int64, since time.Time) (error, int) {
	var count int
	err := db.db.QueryRow(sqlCountPostsSince, authorId, since).Scan(&count)
	return err, count
}

func (db *DB) queryPosts(query string, args ...interface{}) (error, *[]domain.Post) {
	rows, err := db.db.Query(query, args...)
	if err != nil {
		return err, nil
	}
	defer rows.Close()

	var posts []domain.Post

	for rows.Next() {
		var p domain.Post
		var starred int
		if err := rows.Scan(&p.Id, &p.Guid, &p.Uri, &p.ParentId, &p.ThreadParentUri,
			&p.AuthorId, &p.OwnerId, &p.Body, &p.Title, &p.CreatedAt,
			&p.AllowUsers, &p.AllowGroups, &p.DenyUsers, &p.DenyGroups,
			&starred, &p.NetworkOrigin, &p.Coordinates, &p.SourceClient); err != nil {
			return err, &posts
		}
		p.Starred = starred != 0
		posts = append(posts, p)
	}
	if err = rows.Err(); err != nil {
		return err, &posts
	}

	return nil, &posts
}

func scanPost(row *sql.Row) (error, *domain.Post) {
	var p domain.Post
	var starred int
	err := row.Scan(&p.Id, &p.Guid, &p.Uri, &p.ParentId, &p.ThreadParentUri,
		&p.AuthorId, &p.OwnerId, &p.Body, &p.Title, &p.CreatedAt,
		&p.AllowUsers, &p.AllowGroups, &p.DenyUsers, &p.DenyGroups,
		&starred, &p.NetworkOrigin, &p.Coordinates, &p.SourceClient)
	if err == sql.ErrNoRows {
		return err, nil
	}
	p.Starred = starred != 0
	return err, &p
}

func (db *DB) CreateCredential(username string, sshKeyHash string, keypair *util.RsaKeyPair, actorId int64) error {
	return db.wrapTransaction(func(tx *sql.Tx) error {
		_, err := tx.Exec(sqlInsertCredential, username, "", keypair.Public, keypair.Private, sshKeyHash, actorId, time.Now())
		return err
	})
}

func (db *DB) ReadCredentialByUsername(username string) (error, *domain.Credential) {
	return scanCredential(db.db.QueryRow(sqlSelectCredentialByUsername, username))
}

func (db *DB) ReadCredentialBySshKeyHash(hash string) (error, *domain.Credential) {
	return scanCredential(db.db.QueryRow(sqlSelectCredentialBySshKey, hash))
}

func (db *DB) UpdateLoginBySshKeyHash(username string, hash string) error {
	return db.wrapTransaction(func(tx *sql.Tx) error {
		_, err := tx.Exec(sqlUpdateLoginCredential, username, hash)
		return err
	})
}

func scanCredential(row *sql.Row) (error, *domain.Credential) {
	var c domain.Credential
	err := row.Scan(&c.Id, &c.Username, &c.PasswordHash, &c.PublicKeyPem, &c.PrivateKeyPem,
		&c.SshKeyHash, &c.ActorId, &c.FirstTimeLogin, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return err, nil
	}
	return err, &c
}

func (db *DB) CreateDirectMessage(save *domain.SaveDirectMessage, baseUrl string) (error, int64) {
	var id int64
	guid := uuid.New().String()
	err := db.wrapTransaction(func(tx *sql.Tx) error {
		uri := baseUrl + "/messages/" + guid
		res, err := tx.Exec(sqlInsertMessage, guid, uri, save.ReplyToUri,
			save.SenderId, save.RecipientId, save.Title, save.Body, 0, time.Now())
		if err != nil {
			return err
		}
		id, err = res.LastInsertId()
		return err
	})
	return err, id
}

func (db *DB) ReadDirectMessageById(id int64) (error, *domain.DirectMessage) {
	row := db.db.QueryRow(sqlSelectMessageById, id)
	var m domain.DirectMessage
	var seen int
	err := row.Scan(&m.Id, &m.Guid, &m.Uri, &m.ParentUri, &m.SenderId, &m.RecipientId,
		&m.Title, &m.Body, &seen, &m.CreatedAt)
	if err == sql.ErrNoRows {
		return err, nil
	}
	m.Seen = seen != 0
	return err, &m
}

func (db *DB) ReadDirectMessagesReceived(recipientId int64, w domain.Window) (error, *[]domain.DirectMessage) {
	return db.queryMessages(sqlSelectMessagesReceived, recipientId, w.SinceId, w.MaxId, w.MaxId, w.Limit, w.Offset)
}

func (db *DB) ReadDirectMessagesSent(senderId int64, w domain.Window) (error, *[]domain.DirectMessage) {
	return db.queryMessages(sqlSelectMessagesSent, senderId, w.SinceId, w.MaxId, w.MaxId, w.Limit, w.Offset)
}

func (db *DB) DeleteDirectMessage(id int64) error {
	return db.wrapTransaction(func(tx *sql.Tx) error {
		_, err := tx.Exec(sqlDeleteMessage, id)
		return err
	})
}

func (db *DB) queryMessages(query string, args ...interface{}) (error, *[]domain.DirectMessage) {
	rows, err := db.db.Query(query, args...)
	if err != nil {
		return err, nil
	}
	defer rows.Close()

	var messages []domain.DirectMessage

	for rows.Next() {
		var m domain.DirectMessage
		var seen int
		if err := rows.Scan(&m.Id, &m.Guid, &m.Uri, &m.ParentUri, &m.SenderId, &m.RecipientId,
			&m.Title, &m.Body, &seen, &m.CreatedAt); err != nil {
			return err, &messages
		}
		m.Seen = seen != 0
		messages = append(messages, m)
	}
	if err = rows.Err(); err != nil {
		return err, &messages
	}

	return nil, &messages
}

func (db *DB) CreateFollow(actorId int64, targetActorId int64) error {
	return db.wrapTransaction(func(tx *sql.Tx) error {
		_, err := tx.Exec(sqlInsertFollow, actorId, targetActorId, time.Now())
		return err
	})
}

func GetDB() *DB {
	dbOnce.Do(func() {
		// Open database connection
		db, err := sql.Open("sqlite", "database.db")
		if err != nil {
			panic(err)
		}

		// Configure connection pool for concurrent access
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(time.Hour)

		// Try to enable WAL2 mode, fall back to WAL if not supported
		var journalMode string
		err = db.QueryRow("PRAGMA journal_mode=WAL2").Scan(&journalMode)
		if err != nil || journalMode == "delete" {
			// WAL2 not supported, try regular WAL
			err = db.QueryRow("PRAGMA journal_mode=WAL").Scan(&journalMode)
			if err != nil {
				log.Printf("Warning: Failed to enable WAL mode: %v", err)
			} else {
				log.Printf("Database journal mode: %s (WAL2 not supported, using WAL)", journalMode)
			}
		} else {
			log.Printf("Database journal mode: %s", journalMode)
		}

		db.Exec("PRAGMA synchronous = NORMAL")
		db.Exec("PRAGMA cache_size = -64000")
		db.Exec("PRAGMA temp_store = MEMORY")
		db.Exec("PRAGMA busy_timeout = 5000")
		db.Exec("PRAGMA foreign_keys = ON")
		db.Exec("PRAGMA auto_vacuum = INCREMENTAL")

		log.Printf("Database initialized with connection pooling (max 25 connections)")

		dbInstance = &DB{db: db}

		// Run initial schema setup
		err2 := dbInstance.CreateDB()
		if err2 != nil {
			panic(err2)
		}
	})

	return dbInstance
}

// CreateDB creates the database schema.
func (db *DB) CreateDB() error {
	return db.wrapTransaction(func(tx *sql.Tx) error {
		for _, stmt := range []string{
			sqlCreateActorsTable,
			sqlCreatePostsTable,
			sqlCreateCredentialsTable,
			sqlCreateMessagesTable,
			sqlCreateFollowsTable,
		} {
			if _, err := tx.Exec(stmt); err != nil {
				return err
			}
		}
		return nil
	})
}

// wrapTransaction runs the given function within a transaction.
func (db *DB) wrapTransaction(f func(tx *sql.Tx) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()
	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		log.Printf("error starting transaction: %s", err)
		return err
	}
	for {
		err = f(tx)
		if err != nil {
			serr, ok := err.(*sqlite.Error)
			if ok && serr.Code() == sqlitelib.SQLITE_BUSY {
				continue
			}
			log.Printf("error in transaction: %s", err)
			return err
		}
		err = tx.Commit()
		if err != nil {
			log.Printf("error committing transaction: %s", err)
			return err
		}
		break
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

package mongoclient

import (
	"context"
	"crypto/tls"
	"runtime"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"

	"github.com/x-xyz/settlement/base/log"
)

const (
	socketTimeout = 60 * time.Second
)

// Client wraps mongo.Client with the database the engine writes to
type Client struct {
	DbName string
	*mongo.Client
}

type Config struct {
	Uri string
	// AuthDBName is the auth source used when the uri does not name one
	AuthDBName string
	DbName     string
	SSL        bool
	// PoolMultiplier scales the pool by the number of cpus, 0 means 2
	PoolMultiplier float64
}

// MustConnect panics when the database is unreachable
func MustConnect(cfg Config) *Client {
	cli, err := Connect(cfg)
	if err != nil {
		log.Log().WithFields(log.Fields{"mongoURI": cfg.Uri, "err": err}).Panic("fail to dial Mongo")
	}
	return cli
}

// Connect dials with majority write concern. Settlement transactions commit
// only once a majority of the replica set has them.
func Connect(cfg Config) (*Client, error) {
	ctx := context.Background()
	logger := log.Log().WithField("dbName", cfg.DbName)

	connSetting, err := connstring.Parse(cfg.Uri)
	if err != nil {
		logger.WithField("err", err).Error("connstring.Parse failed")
		return nil, err
	}
	logger = logger.WithField("mongoHosts", connSetting.Hosts)

	clientOpts := options.Client().
		ApplyURI(cfg.Uri).
		SetSocketTimeout(socketTimeout).
		SetWriteConcern(writeconcern.New(writeconcern.WMajority())).
		SetRetryWrites(true)

	if connSetting.Username != "" && connSetting.AuthSource == "" {
		clientOpts.SetAuth(options.Credential{
			AuthMechanism:           connSetting.AuthMechanism,
			AuthMechanismProperties: connSetting.AuthMechanismProperties,
			Username:                connSetting.Username,
			Password:                connSetting.Password,
			PasswordSet:             connSetting.PasswordSet,
			AuthSource:              cfg.AuthDBName,
		})
	}

	mult := cfg.PoolMultiplier
	if mult <= 0 {
		mult = 2
	}
	// every host keeps its own pool
	poolSize := int(float64(runtime.NumCPU()) * mult)
	poolSize = (poolSize + len(connSetting.Hosts) - 1) / len(connSetting.Hosts)
	clientOpts.SetMinPoolSize(uint64(poolSize / 4))
	clientOpts.SetMaxPoolSize(uint64(poolSize))

	if cfg.SSL {
		clientOpts.SetTLSConfig(&tls.Config{})
	}

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		logger.WithField("err", err).Error("mongo.Connect failed")
		return nil, err
	}

	// fail fast on a wrong db name or credentials
	if _, err := client.Database(cfg.DbName).ListCollectionNames(ctx, bson.D{}); err != nil {
		logger.WithField("err", err).Error("ListCollectionNames failed")
		return nil, err
	}

	logger.WithField("poolSize", poolSize).Info("mongo connected")
	return &Client{
		Client: client,
		DbName: cfg.DbName,
	}, nil
}

package query

import (
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/x-xyz/settlement/base/ctx"
	"github.com/x-xyz/settlement/base/database/mongoclient"
	"github.com/x-xyz/settlement/base/log"
	"github.com/x-xyz/settlement/domain"
)

const (
	queryMaxTime    = 20 * time.Second
	slowLogMs       = int64(500)
	concurrentTxLim = 10
)

var (
	timeNow = time.Now
)

type impl struct {
	client     *mongoclient.Client
	checkIndex bool
	tokens     chan int
}

// New initializes an impl
func New(client *mongoclient.Client, checkIndex bool) Mongo {
	tokens := make(chan int, concurrentTxLim)
	for i := 0; i < concurrentTxLim; i++ {
		tokens <- i + 1
	}
	return &impl{
		client:     client,
		checkIndex: checkIndex,
		tokens:     tokens,
	}
}

func (im *impl) collection(table domain.Table) *mongo.Collection {
	return im.client.Database(im.client.DbName).Collection(string(table))
}

func (im *impl) FindOne(context ctx.Ctx, table domain.Table, query, result interface{}) error {
	defer slowLog(context, string(table), "findone", query, nil)()

	context = ctx.WithValues(context, map[string]interface{}{
		"table": table,
		"query": query,
	})

	if err := im.checkQueryIndex(context, string(table), "find", bson.E{Key: "filter", Value: query}); err != nil {
		context.WithField("err", err).Error("checkQueryIndex failed")
		return err
	}

	findOneOpts := options.FindOne().SetMaxTime(queryMaxTime)
	res := im.collection(table).FindOne(context, query, findOneOpts)
	if err := res.Decode(result); err != nil {
		if err == mongo.ErrNoDocuments {
			return ErrNotFound
		}
		context.WithField("err", err).Error("FindOne: FindOne error")
		return err
	}
	return nil
}

func (im *impl) Upsert(context ctx.Ctx, table domain.Table, selector, update interface{}) error {
	defer slowLog(context, string(table), "upsert", selector, nil)()

	replaceOpts := options.Replace().SetUpsert(true)
	if _, err := im.collection(table).ReplaceOne(context, selector, update, replaceOpts); err != nil {
		context.WithFields(log.Fields{
			"err":      err,
			"table":    table,
			"selector": selector,
		}).Error("Upsert: ReplaceOne failed")
		return err
	}
	return nil
}

func sortOption(sort string) bson.D {
	if sort == "" {
		return nil
	}
	if sort[0] == '-' {
		return bson.D{{Key: sort[1:], Value: -1}}
	}
	return bson.D{{Key: sort, Value: 1}}
}

func (im *impl) Search(context ctx.Ctx, table domain.Table, offset, limit int, sort string, query, results interface{}) error {
	defer slowLog(context, string(table), "search", query, sort)()

	context = ctx.WithValues(context, map[string]interface{}{
		"table": table,
		"query": query,
	})

	if err := im.checkQueryIndex(context, string(table), "find", bson.E{Key: "filter", Value: query}); err != nil {
		context.WithField("err", err).Error("checkQueryIndex failed")
		return err
	}

	findOpts := options.Find().SetMaxTime(queryMaxTime).SetLimit(int64(limit)).SetSkip(int64(offset))
	if s := sortOption(sort); len(s) > 0 {
		findOpts.SetSort(s)
	}
	cursor, err := im.collection(table).Find(context, query, findOpts)
	if err != nil {
		context.WithField("err", err).Error("Search: Find failed")
		return err
	}
	defer cursor.Close(context)

	if err := cursor.All(context, results); err != nil {
		context.WithField("err", err).Error("Search: cursor.All failed")
		return err
	}
	return nil
}

func (im *impl) Remove(context ctx.Ctx, table domain.Table, selector interface{}) error {
	defer slowLog(context, string(table), "remove", selector, nil)()

	res, err := im.collection(table).DeleteOne(context, selector)
	if err != nil {
		context.WithFields(log.Fields{"err": err, "table": table}).Error("Remove: DeleteOne failed")
		return err
	} else if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (im *impl) RunWithTransaction(context ctx.Ctx, run func(ctx.Ctx) error) error {
	// mongo has no nested transactions, join the running one
	if mongo.SessionFromContext(context) != nil {
		return run(context)
	}

	var token int
	select {
	case <-context.Done():
		return context.Err()
	case token = <-im.tokens:
	}
	defer func() {
		im.tokens <- token
	}()

	session, err := im.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(context)

	fn := func(sessCtx mongo.SessionContext) (interface{}, error) {
		return nil, run(ctx.WithContext(context, sessCtx))
	}
	_, err = session.WithTransaction(context, fn)
	return err
}

func slowLog(context ctx.Ctx, table, action string, query interface{}, sort interface{}) func() {
	start := timeNow()

	return func() {
		elapsedMs := time.Since(start).Milliseconds()
		if elapsedMs >= slowLogMs {
			context.WithFields(log.Fields{
				"table":      table,
				"action":     action,
				"startTime":  start.Unix(),
				"durationMs": elapsedMs,
				"query":      query,
				"sort":       sort,
			}).Warn("mongo slowlog")
		}
	}
}

func (im *impl) checkQueryIndex(context ctx.Ctx, table string, action string, query bson.E) error {
	// explain is not supported inside a transaction
	if !im.checkIndex || mongo.SessionFromContext(context) != nil {
		return nil
	}
	// reference: https://docs.mongodb.com/manual/reference/command/explain/
	res := im.client.Database(im.client.DbName).RunCommand(context, bson.D{
		bson.E{
			Key: "explain",
			Value: bson.D{
				bson.E{Key: action, Value: table},
				query,
			},
		},
		bson.E{
			Key:   "verbosity",
			Value: "queryPlanner",
		},
	})

	var m bson.M
	if err := res.Decode(&m); err != nil {
		context.WithField("err", err).Warn("checkQueryIndex decode failed")
		return nil
	}

	// the explain output is not consistent across deployments, look for the
	// stage name anywhere in its string form
	if strings.Contains(fmt.Sprintf("%v", m), "COLLSCAN") {
		context.WithField("query", query).Warn("COLLSCAN")
		return ErrCollScan
	}
	return nil
}

package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"fromprom-backend/internal/logger"
)

// DynamoStore implements Store on a single DynamoDB table with a
// composite (PK, SK) primary key.
type DynamoStore struct {
	client *dynamodb.Client
	table  string
}

func NewDynamoStore(client *dynamodb.Client, table string) *DynamoStore {
	return &DynamoStore{client: client, table: table}
}

// expr accumulates expression attribute name and value placeholders.
type expr struct {
	names  map[string]string
	values map[string]types.AttributeValue
}

func (e *expr) name(attr string) string {
	if e.names == nil {
		e.names = make(map[string]string)
	}
	p := fmt.Sprintf("#n%d", len(e.names))
	e.names[p] = attr
	return p
}

func (e *expr) value(v any) (string, error) {
	av, err := attributevalue.Marshal(v)
	if err != nil {
		return "", err
	}
	if e.values == nil {
		e.values = make(map[string]types.AttributeValue)
	}
	p := fmt.Sprintf(":v%d", len(e.values))
	e.values[p] = av
	return p, nil
}

func (e *expr) condition(c Condition) (*string, error) {
	if c.empty() {
		return nil, nil
	}
	var parts []string
	if c.IfAbsent {
		parts = append(parts, fmt.Sprintf("attribute_not_exists(%s)", e.name(AttrPK)))
	}
	if c.IfExists {
		parts = append(parts, fmt.Sprintf("attribute_exists(%s)", e.name(AttrPK)))
	}
	for attr, v := range c.AttrEquals {
		p, err := e.value(v)
		if err != nil {
			return nil, err
		}
		parts = append(parts, fmt.Sprintf("%s = %s", e.name(attr), p))
	}
	return aws.String(strings.Join(parts, " AND ")), nil
}

func incrementCondition(e *expr, inc Increment, attr, zero string) (*string, error) {
	base, err := e.condition(inc.Cond)
	if err != nil {
		return nil, err
	}
	if !inc.RequirePositive {
		return base, nil
	}
	positive := fmt.Sprintf("%s > %s", attr, zero)
	if base == nil {
		return aws.String(positive), nil
	}
	return aws.String(*base + " AND " + positive), nil
}

func marshalKey(key Key) (map[string]types.AttributeValue, error) {
	return attributevalue.MarshalMap(map[string]string{AttrPK: key.PK, AttrSK: key.SK})
}

func unmarshalItem(raw map[string]types.AttributeValue) (Item, error) {
	var it map[string]any
	if err := attributevalue.UnmarshalMap(raw, &it); err != nil {
		return nil, &UnavailableError{Op: "unmarshal", Err: err}
	}
	return Item(it), nil
}

func mapWriteErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return ErrConditionFailed
	}
	var tce *types.TransactionCanceledException
	if errors.As(err, &tce) {
		for _, r := range tce.CancellationReasons {
			if r.Code != nil && *r.Code == "ConditionalCheckFailed" {
				return ErrConditionFailed
			}
		}
	}
	return &UnavailableError{Op: op, Err: err}
}

func (s *DynamoStore) Get(ctx context.Context, key Key) (Item, error) {
	logger.StoreCall("get", "pk", key.PK, "sk", key.SK)
	k, err := marshalKey(key)
	if err != nil {
		return nil, &UnavailableError{Op: "get", Err: err}
	}
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.table),
		Key:            k,
		ConsistentRead: aws.Bool(true),
	})
	logger.StoreResult("get", err, "pk", key.PK)
	if err != nil {
		return nil, &UnavailableError{Op: "get", Err: err}
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	return unmarshalItem(out.Item)
}

func (s *DynamoStore) Put(ctx context.Context, put Put) error {
	item, err := attributevalue.MarshalMap(map[string]any(put.Item))
	if err != nil {
		return &UnavailableError{Op: "put", Err: err}
	}
	var e expr
	cond, err := e.condition(put.Cond)
	if err != nil {
		return &UnavailableError{Op: "put", Err: err}
	}
	in := &dynamodb.PutItemInput{
		TableName:           aws.String(s.table),
		Item:                item,
		ConditionExpression: cond,
	}
	if len(e.names) > 0 {
		in.ExpressionAttributeNames = e.names
	}
	if len(e.values) > 0 {
		in.ExpressionAttributeValues = e.values
	}
	logger.StoreCall("put", "pk", put.Item.String(AttrPK), "sk", put.Item.String(AttrSK))
	_, err = s.client.PutItem(ctx, in)
	logger.StoreResult("put", err, "pk", put.Item.String(AttrPK))
	return mapWriteErr("put", err)
}

func (s *DynamoStore) Update(ctx context.Context, upd Update) error {
	k, err := marshalKey(upd.Key)
	if err != nil {
		return &UnavailableError{Op: "update", Err: err}
	}
	var e expr
	sets := make([]string, 0, len(upd.Set))
	for attr, v := range upd.Set {
		p, verr := e.value(v)
		if verr != nil {
			return &UnavailableError{Op: "update", Err: verr}
		}
		sets = append(sets, fmt.Sprintf("%s = %s", e.name(attr), p))
	}
	cond, err := e.condition(upd.Cond)
	if err != nil {
		return &UnavailableError{Op: "update", Err: err}
	}
	in := &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.table),
		Key:                       k,
		UpdateExpression:          aws.String("SET " + strings.Join(sets, ", ")),
		ConditionExpression:       cond,
		ExpressionAttributeNames:  e.names,
		ExpressionAttributeValues: e.values,
	}
	logger.StoreCall("update", "pk", upd.Key.PK, "sk", upd.Key.SK)
	_, err = s.client.UpdateItem(ctx, in)
	logger.StoreResult("update", err, "pk", upd.Key.PK)
	return mapWriteErr("update", err)
}

func (s *DynamoStore) Increment(ctx context.Context, inc Increment) error {
	k, err := marshalKey(inc.Key)
	if err != nil {
		return &UnavailableError{Op: "increment", Err: err}
	}
	var e expr
	attr := e.name(inc.Attr)
	zero, err := e.value(0)
	if err != nil {
		return &UnavailableError{Op: "increment", Err: err}
	}
	delta, err := e.value(inc.Delta)
	if err != nil {
		return &UnavailableError{Op: "increment", Err: err}
	}
	cond, err := incrementCondition(&e, inc, attr, zero)
	if err != nil {
		return &UnavailableError{Op: "increment", Err: err}
	}
	in := &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.table),
		Key:                       k,
		UpdateExpression:          aws.String(fmt.Sprintf("SET %s = if_not_exists(%s, %s) + %s", attr, attr, zero, delta)),
		ConditionExpression:       cond,
		ExpressionAttributeNames:  e.names,
		ExpressionAttributeValues: e.values,
	}
	logger.StoreCall("increment", "pk", inc.Key.PK, "attr", inc.Attr, "delta", inc.Delta)
	_, err = s.client.UpdateItem(ctx, in)
	logger.StoreResult("increment", err, "pk", inc.Key.PK)
	return mapWriteErr("increment", err)
}

func (s *DynamoStore) Delete(ctx context.Context, del Delete) error {
	k, err := marshalKey(del.Key)
	if err != nil {
		return &UnavailableError{Op: "delete", Err: err}
	}
	var e expr
	cond, err := e.condition(del.Cond)
	if err != nil {
		return &UnavailableError{Op: "delete", Err: err}
	}
	in := &dynamodb.DeleteItemInput{
		TableName:           aws.String(s.table),
		Key:                 k,
		ConditionExpression: cond,
	}
	if len(e.names) > 0 {
		in.ExpressionAttributeNames = e.names
	}
	if len(e.values) > 0 {
		in.ExpressionAttributeValues = e.values
	}
	logger.StoreCall("delete", "pk", del.Key.PK, "sk", del.Key.SK)
	_, err = s.client.DeleteItem(ctx, in)
	logger.StoreResult("delete", err, "pk", del.Key.PK)
	return mapWriteErr("delete", err)
}

func (s *DynamoStore) Query(ctx context.Context, q Query) ([]Item, error) {
	var e expr
	pk, err := e.value(q.PK)
	if err != nil {
		return nil, &UnavailableError{Op: "query", Err: err}
	}
	keyCond := fmt.Sprintf("%s = %s", e.name(AttrPK), pk)
	if q.SKPrefix != "" {
		skp, verr := e.value(q.SKPrefix)
		if verr != nil {
			return nil, &UnavailableError{Op: "query", Err: verr}
		}
		keyCond += fmt.Sprintf(" AND begins_with(%s, %s)", e.name(AttrSK), skp)
	}
	in := &dynamodb.QueryInput{
		TableName:                 aws.String(s.table),
		KeyConditionExpression:    aws.String(keyCond),
		ExpressionAttributeNames:  e.names,
		ExpressionAttributeValues: e.values,
		ScanIndexForward:          aws.Bool(!q.Descending),
	}
	if q.Limit > 0 {
		in.Limit = aws.Int32(int32(q.Limit))
	}
	logger.StoreCall("query", "pk", q.PK, "sk_prefix", q.SKPrefix)
	var items []Item
	for {
		out, err := s.client.Query(ctx, in)
		if err != nil {
			logger.StoreResult("query", err, "pk", q.PK)
			return nil, &UnavailableError{Op: "query", Err: err}
		}
		for _, raw := range out.Items {
			it, uerr := unmarshalItem(raw)
			if uerr != nil {
				return nil, uerr
			}
			items = append(items, it)
		}
		if q.Limit > 0 && len(items) >= q.Limit {
			return items[:q.Limit], nil
		}
		if len(out.LastEvaluatedKey) == 0 {
			return items, nil
		}
		in.ExclusiveStartKey = out.LastEvaluatedKey
	}
}

func (s *DynamoStore) Scan(ctx context.Context, sc Scan) ([]Item, error) {
	var e expr
	var parts []string
	if sc.SKPrefix != "" {
		p, err := e.value(sc.SKPrefix)
		if err != nil {
			return nil, &UnavailableError{Op: "scan", Err: err}
		}
		parts = append(parts, fmt.Sprintf("begins_with(%s, %s)", e.name(AttrSK), p))
	}
	if len(sc.SKIn) > 0 {
		ph := make([]string, len(sc.SKIn))
		for i, sk := range sc.SKIn {
			p, err := e.value(sk)
			if err != nil {
				return nil, &UnavailableError{Op: "scan", Err: err}
			}
			ph[i] = p
		}
		parts = append(parts, fmt.Sprintf("%s IN (%s)", e.name(AttrSK), strings.Join(ph, ", ")))
	}
	for attr, v := range sc.AttrEquals {
		p, err := e.value(v)
		if err != nil {
			return nil, &UnavailableError{Op: "scan", Err: err}
		}
		parts = append(parts, fmt.Sprintf("%s = %s", e.name(attr), p))
	}
	in := &dynamodb.ScanInput{TableName: aws.String(s.table)}
	if len(parts) > 0 {
		in.FilterExpression = aws.String(strings.Join(parts, " AND "))
		in.ExpressionAttributeNames = e.names
		in.ExpressionAttributeValues = e.values
	}
	logger.StoreCall("scan", "sk_prefix", sc.SKPrefix)
	var items []Item
	for {
		out, err := s.client.Scan(ctx, in)
		if err != nil {
			logger.StoreResult("scan", err)
			return nil, &UnavailableError{Op: "scan", Err: err}
		}
		for _, raw := range out.Items {
			it, uerr := unmarshalItem(raw)
			if uerr != nil {
				return nil, uerr
			}
			items = append(items, it)
		}
		if len(out.LastEvaluatedKey) == 0 {
			return items, nil
		}
		in.ExclusiveStartKey = out.LastEvaluatedKey
	}
}

func (s *DynamoStore) BatchGet(ctx context.Context, keys []Key) ([]Item, error) {
	var items []Item
	for start := 0; start < len(keys); start += MaxBatchGetKeys {
		end := min(start+MaxBatchGetKeys, len(keys))
		chunk := keys[start:end]
		avKeys := make([]map[string]types.AttributeValue, 0, len(chunk))
		for _, key := range chunk {
			k, err := marshalKey(key)
			if err != nil {
				return nil, &UnavailableError{Op: "batch_get", Err: err}
			}
			avKeys = append(avKeys, k)
		}
		req := map[string]types.KeysAndAttributes{s.table: {Keys: avKeys}}
		logger.StoreCall("batch_get", "keys", len(chunk))
		for attempt := 0; len(req) > 0; attempt++ {
			if attempt >= 5 {
				return nil, &UnavailableError{Op: "batch_get", Err: fmt.Errorf("unprocessed keys after %d attempts", attempt)}
			}
			out, err := s.client.BatchGetItem(ctx, &dynamodb.BatchGetItemInput{RequestItems: req})
			if err != nil {
				logger.StoreResult("batch_get", err)
				return nil, &UnavailableError{Op: "batch_get", Err: err}
			}
			for _, raw := range out.Responses[s.table] {
				it, uerr := unmarshalItem(raw)
				if uerr != nil {
					return nil, uerr
				}
				items = append(items, it)
			}
			req = out.UnprocessedKeys
		}
	}
	return items, nil
}

func (s *DynamoStore) TransactWrite(ctx context.Context, items ...TransactItem) error {
	if len(items) == 0 {
		return nil
	}
	if len(items) > MaxTransactItems {
		return &UnavailableError{Op: "transact_write", Err: fmt.Errorf("group of %d exceeds limit %d", len(items), MaxTransactItems)}
	}
	twi := make([]types.TransactWriteItem, 0, len(items))
	for _, ti := range items {
		built, err := s.buildTransactItem(ti)
		if err != nil {
			return err
		}
		twi = append(twi, built)
	}
	logger.StoreCall("transact_write", "items", len(items))
	_, err := s.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: twi})
	logger.StoreResult("transact_write", err, "items", len(items))
	return mapWriteErr("transact_write", err)
}

func (s *DynamoStore) buildTransactItem(ti TransactItem) (types.TransactWriteItem, error) {
	switch {
	case ti.Put != nil:
		item, err := attributevalue.MarshalMap(map[string]any(ti.Put.Item))
		if err != nil {
			return types.TransactWriteItem{}, &UnavailableError{Op: "transact_write", Err: err}
		}
		var e expr
		cond, err := e.condition(ti.Put.Cond)
		if err != nil {
			return types.TransactWriteItem{}, &UnavailableError{Op: "transact_write", Err: err}
		}
		return types.TransactWriteItem{Put: &types.Put{
			TableName:                 aws.String(s.table),
			Item:                      item,
			ConditionExpression:       cond,
			ExpressionAttributeNames:  e.names,
			ExpressionAttributeValues: e.values,
		}}, nil
	case ti.Update != nil:
		k, err := marshalKey(ti.Update.Key)
		if err != nil {
			return types.TransactWriteItem{}, &UnavailableError{Op: "transact_write", Err: err}
		}
		var e expr
		sets := make([]string, 0, len(ti.Update.Set))
		for attr, v := range ti.Update.Set {
			p, verr := e.value(v)
			if verr != nil {
				return types.TransactWriteItem{}, &UnavailableError{Op: "transact_write", Err: verr}
			}
			sets = append(sets, fmt.Sprintf("%s = %s", e.name(attr), p))
		}
		cond, err := e.condition(ti.Update.Cond)
		if err != nil {
			return types.TransactWriteItem{}, &UnavailableError{Op: "transact_write", Err: err}
		}
		return types.TransactWriteItem{Update: &types.Update{
			TableName:                 aws.String(s.table),
			Key:                       k,
			UpdateExpression:          aws.String("SET " + strings.Join(sets, ", ")),
			ConditionExpression:       cond,
			ExpressionAttributeNames:  e.names,
			ExpressionAttributeValues: e.values,
		}}, nil
	case ti.Increment != nil:
		k, err := marshalKey(ti.Increment.Key)
		if err != nil {
			return types.TransactWriteItem{}, &UnavailableError{Op: "transact_write", Err: err}
		}
		var e expr
		attr := e.name(ti.Increment.Attr)
		zero, err := e.value(0)
		if err != nil {
			return types.TransactWriteItem{}, &UnavailableError{Op: "transact_write", Err: err}
		}
		delta, err := e.value(ti.Increment.Delta)
		if err != nil {
			return types.TransactWriteItem{}, &UnavailableError{Op: "transact_write", Err: err}
		}
		cond, err := incrementCondition(&e, *ti.Increment, attr, zero)
		if err != nil {
			return types.TransactWriteItem{}, &UnavailableError{Op: "transact_write", Err: err}
		}
		return types.TransactWriteItem{Update: &types.Update{
			TableName:                 aws.String(s.table),
			Key:                       k,
			UpdateExpression:          aws.String(fmt.Sprintf("SET %s = if_not_exists(%s, %s) + %s", attr, attr, zero, delta)),
			ConditionExpression:       cond,
			ExpressionAttributeNames:  e.names,
			ExpressionAttributeValues: e.values,
		}}, nil
	case ti.Delete != nil:
		k, err := marshalKey(ti.Delete.Key)
		if err != nil {
			return types.TransactWriteItem{}, &UnavailableError{Op: "transact_write", Err: err}
		}
		var e expr
		cond, err := e.condition(ti.Delete.Cond)
		if err != nil {
			return types.TransactWriteItem{}, &UnavailableError{Op: "transact_write", Err: err}
		}
		return types.TransactWriteItem{Delete: &types.Delete{
			TableName:                 aws.String(s.table),
			Key:                       k,
			ConditionExpression:       cond,
			ExpressionAttributeNames:  e.names,
			ExpressionAttributeValues: e.values,
		}}, nil
	default:
		return types.TransactWriteItem{}, &UnavailableError{Op: "transact_write", Err: fmt.Errorf("empty transact item")}
	}
}

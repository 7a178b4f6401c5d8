package base

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/satori/go.uuid"
	log "github.com/sirupsen/logrus"
	"gopkg.in/olivere/elastic.v5"

	"crashes/common/format/report"
)

const (
	EntryIndex = "crashes"
	EntryType  = "entry"
)

type Repository struct {
	db    *elastic.Client
	cache Cashe
}

func groupKey(e *report.Entry) string {
	return fmt.Sprintf("group:%s:%s", e.ApiKey, e.Signature)
}

// assignGroup links e to the first entry stored with the same signature.
func (r *Repository) assignGroup(e *report.Entry) {
	key := groupKey(e)
	group, err := r.cache.Get(key)
	if err == nil && group != "" {
		e.GroupId = group
		return
	}

	e.GroupId = e.Id
	if err = r.cache.Set(key, e.Id); err != nil {
		log.WithError(err).Warning("Can't put in cache group of signature")
	}
}

func (r *Repository) AddReport(e *report.Entry) (string, error) {
	e.Id = uuid.NewV4().String()
	r.assignGroup(e)

	_, err := r.db.
		Index().
		Index(EntryIndex).
		Type(EntryType).
		Id(e.Id).
		BodyJson(e).
		Refresh("true").
		Do(context.Background())

	if err != nil {
		log.WithError(err).Error("Can't insert crash report")
	}

	return e.Id, err
}

func (r *Repository) GetReport(id string) (*report.Entry, error) {
	get, err := r.db.Get().
		Index(EntryIndex).
		Type(EntryType).
		Id(id).
		Do(context.Background())
	if err != nil {
		return nil, err
	}

	var e report.Entry
	err = json.Unmarshal(*get.Source, &e)
	if err != nil {
		log.WithError(err).Error("Can't deserialize crash report")
		return nil, err
	}
	e.Id = id
	return &e, nil
}

// FindOlder returns up to size entries added before now-older, e.g. older = "16d".
func (r *Repository) FindOlder(older string, size int) ([]report.Entry, error) {
	rng := elastic.NewRangeQuery("date_added")
	rng.Lte(fmt.Sprintf("now-%s", older))

	searchResult, err := r.db.Search().
		Index(EntryIndex).
		Type(EntryType).
		Query(rng).
		Sort("date_added", true).
		Size(size).
		Do(context.Background())
	if err != nil {
		log.WithFields(log.Fields{
			"older": older,
			"error": err,
		}).Error("Can't search crash reports")
		return nil, err
	}

	var entries []report.Entry
	var etyp report.Entry
	for _, item := range searchResult.Each(reflect.TypeOf(etyp)) {
		entries = append(entries, item.(report.Entry))
	}
	return entries, nil
}

func (r *Repository) DeleteReport(id string) error {
	_, err := elastic.NewDeleteService(r.db).
		Index(EntryIndex).
		Type(EntryType).
		Id(id).
		Do(context.Background())
	return err
}

func NewRepository(connectionUrl string, c Cashe) (*Repository, error) {
	b, err := elastic.NewClient(elastic.SetURL(connectionUrl))
	return &Repository{
		db:    b,
		cache: c,
	}, err
}

package kv

import (
	"errors"
	"reflect"

	"github.com/golang/snappy"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func decode(data []byte, dst interface{}) error {
	data, err := snappy.Decode(nil, data)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}

func encode(obj interface{}) ([]byte, error) {
	if obj == nil || (reflect.ValueOf(obj).Kind() == reflect.Ptr && reflect.ValueOf(obj).IsNil()) {
		return nil, errors.New("cannot encode nil object")
	}
	enc, err := json.Marshal(obj)
	if err != nil {
		return nil, err
	}
	return snappy.Encode(nil, enc), nil
}

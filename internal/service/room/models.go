package room

import (
	"github.com/kikoune/server/internal/repository/room"
	"github.com/kikoune/server/pkg/nicovideodata"
)

// ResolvedItem is a stored queue item with its display metadata merged in.
type ResolvedItem struct {
	Id           string `json:"id"`
	Title        string `json:"title"`
	Author       string `json:"author"`
	ThumbnailUrl string `json:"thumbnailUrl"`
	Length       int    `json:"length"`
	VideoId      string `json:"videoId"`
	RequestedBy  string `json:"requestedBy"`
	Nonce        string `json:"nonce"`
}

// Session is the API view of a room session, every item resolved.
type Session struct {
	Video     *ResolvedItem  `json:"video"`
	StartedAt int64          `json:"startedAt"`
	Host      string         `json:"host"`
	Queue     []ResolvedItem `json:"queue"`
	Setting   room.Setting   `json:"setting"`
}

func mergeItem(item room.QueueItem, video nicovideodata.Video) ResolvedItem {
	return ResolvedItem{
		Id:           video.Id,
		Title:        video.Title,
		Author:       video.Author,
		ThumbnailUrl: video.ThumbnailUrl,
		Length:       video.Length,
		VideoId:      item.VideoId,
		RequestedBy:  item.RequestedBy,
		Nonce:        item.Nonce,
	}
}

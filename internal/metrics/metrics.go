// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// 招待・償還・チェックインの各サービスから利用する。
type MetricsCollector interface {
	RecordInviteSent()
	RecordInviteFailure(reason string)
	RecordRedemption()
	RecordRedemptionFailure(reason string)
	RecordCheckIn()
	RecordDuplicateCheckIn()
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	inviteSent       prometheus.Counter
	inviteFail       *prometheus.CounterVec
	redemptions      prometheus.Counter
	redemptionFail   *prometheus.CounterVec
	checkins         prometheus.Counter
	duplicateCheckin prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		inviteSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kolokwa_invites_sent_total",
			Help: "送信に成功した招待メールの合計数",
		}),
		inviteFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kolokwa_invite_fail_total",
			Help: "失敗した招待発行の合計数（理由別）",
		}, []string{"reason"}),
		redemptions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kolokwa_redemptions_total",
			Help: "成功したトークン償還の合計数",
		}),
		redemptionFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kolokwa_redemption_fail_total",
			Help: "失敗したトークン償還の合計数（理由別）",
		}, []string{"reason"}),
		checkins: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kolokwa_checkins_total",
			Help: "成功したチェックインの合計数",
		}),
		duplicateCheckin: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kolokwa_duplicate_checkin_total",
			Help: "チェックイン済み参加者への再チェックイン試行の合計数",
		}),
	}

	reg.MustRegister(
		c.inviteSent,
		c.inviteFail,
		c.redemptions,
		c.redemptionFail,
		c.checkins,
		c.duplicateCheckin,
	)

	return c
}

// RecordInviteSent は招待メール送信成功を記録する。
func (c *Collector) RecordInviteSent() {
	c.inviteSent.Inc()
}

// RecordInviteFailure は招待発行の失敗を理由別に記録する。
func (c *Collector) RecordInviteFailure(reason string) {
	c.inviteFail.WithLabelValues(reason).Inc()
}

// RecordRedemption はトークン償還成功を記録する。
func (c *Collector) RecordRedemption() {
	c.redemptions.Inc()
}

// RecordRedemptionFailure はトークン償還の失敗を理由別に記録する。
func (c *Collector) RecordRedemptionFailure(reason string) {
	c.redemptionFail.WithLabelValues(reason).Inc()
}

// RecordCheckIn はチェックイン成功を記録する。
func (c *Collector) RecordCheckIn() {
	c.checkins.Inc()
}

// RecordDuplicateCheckIn は再チェックイン試行を記録する。
func (c *Collector) RecordDuplicateCheckIn() {
	c.duplicateCheckin.Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
// Prometheusスクレイプに対応する。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}

// NopCollector は何も記録しないMetricsCollector実装。テスト用。
type NopCollector struct{}

func (NopCollector) RecordInviteSent()                     {}
func (NopCollector) RecordInviteFailure(reason string)     {}
func (NopCollector) RecordRedemption()                     {}
func (NopCollector) RecordRedemptionFailure(reason string) {}
func (NopCollector) RecordCheckIn()                        {}
func (NopCollector) RecordDuplicateCheckIn()               {}

// compile-time interface check
var _ MetricsCollector = (*Collector)(nil)
var _ MetricsCollector = NopCollector{}
